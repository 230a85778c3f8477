package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const publicYaml = `
http_port: 8080
jwt_ttl: 20h
posts_per_page: 5
max_per_page: 50
max_attachment_size: 1048576
allowed_attachment_mime_types: ["image/png", "image/jpeg"]
attachments:
  backend: fs
  fs_root: media
`

func writeConfig(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))
	return dir
}

func TestMustLoad(t *testing.T) {
	dir := writeConfig(t, publicYaml, "jwt_key: 'k'\npg:\n  host: db\n  port: 5432\n  user: feed\n  dbname: feed\n")

	cfg := MustLoad(dir)

	assert.Equal(t, 20*time.Hour, cfg.JwtTTL())
	assert.Equal(t, "k", cfg.JwtKey())
	assert.Equal(t, 5, cfg.Public.PostsPerPage)
	assert.Equal(t, 12, cfg.Public.BcryptCost, "default bcrypt cost should survive when yaml omits it")
	assert.Equal(t, AttachmentBackendFS, cfg.Public.Attachments.Backend)
	assert.Equal(t, "db", cfg.Private.Pg.Host)
}

func TestMustLoad_EnvOverridesSecret(t *testing.T) {
	dir := writeConfig(t, publicYaml, "jwt_key: 'from-file'\npg:\n  host: db\n  port: 5432\n  user: feed\n  dbname: feed\n")
	t.Setenv("FEED_JWT_KEY", "from-env")
	t.Setenv("FEED_PG_PASSWORD", "secret")

	cfg := MustLoad(dir)

	assert.Equal(t, "from-env", cfg.JwtKey())
	assert.Equal(t, "secret", cfg.Private.Pg.Password)
}

func TestMustLoad_RequiredFields(t *testing.T) {
	// jwt_key is intentionally missing
	dir := writeConfig(t, publicYaml, "pg:\n  host: db\n  port: 5432\n  user: feed\n  dbname: feed\n")

	assert.Panics(t, func() { MustLoad(dir) })
}

func TestMustLoad_MissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(t.TempDir()) })
}

func TestValidate_S3NeedsKeys(t *testing.T) {
	cfg := &Config{Public: defaultPublic(), Private: Private{JwtKey: "k", Pg: Pg{Host: "h", Port: 1, User: "u", Dbname: "d"}}}
	cfg.Public.MaxAttachmentSize = 1
	cfg.Public.AllowedAttachmentMimes = []string{"image/png"}
	cfg.Public.Attachments = Attachments{Backend: AttachmentBackendS3, S3: S3{Bucket: "posts"}}

	assert.Error(t, Validate(cfg))

	cfg.Private.S3AccessKeyId = "id"
	cfg.Private.S3SecretAccessKey = "secret"
	assert.NoError(t, Validate(cfg))
}

package domain

type Credentials struct {
	Email    Email
	Username Username
	Password Password
}

// SigninResult is what a successful signin hands back to the caller.
type SigninResult struct {
	Token  string
	UserId UserId
}

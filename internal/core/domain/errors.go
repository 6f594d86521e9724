package domain

import "errors"

var (
	ErrPropertyNotFound   = errors.New("property not found")
	ErrAffiliateNotFound  = errors.New("affiliate not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("invalid jwt token")
	ErrLinkNotFound       = errors.New("referral link not found")
	ErrLinkInactive       = errors.New("referral link is inactive")
)

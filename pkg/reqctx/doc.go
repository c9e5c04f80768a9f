// Package reqctx carries request-scoped values between HTTP middleware and
// the service layer.
//
// RequestMeta is set for every request. Identity is set only once a bearer
// token and its session have been verified; its absence means the caller is
// an anonymous customer.
package reqctx

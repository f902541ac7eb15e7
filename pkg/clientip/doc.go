// Package clientip resolves the address a request came from.
//
// By default only the connection's remote address is used. Behind a reverse
// proxy, enable TrustProxy so that CF-Connecting-IP, X-Forwarded-For and
// X-Real-IP are consulted first, in that order:
//
//	r.Use(clientip.Middleware(clientip.Config{TrustProxy: true}))
//	ip := clientip.FromContext(r.Context())
package clientip

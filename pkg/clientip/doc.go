// Package clientip resolves the originating client address of a request
// served behind reverse proxies.
//
// Headers are inspected in this order, the first valid address wins:
//
//  1. CF-Connecting-IP
//  2. DO-Connecting-IP
//  3. X-Forwarded-For (first valid entry of the list)
//  4. X-Real-IP
//  5. RemoteAddr
//
// Middleware stores the resolved address on the request context, where
// FromContext, the login rate limiter key and LoggerExtractor pick it up.
//
//	r := chi.NewRouter()
//	r.Use(clientip.Middleware)
//
// GetIP never fails; an empty string means no usable address was found.
package clientip

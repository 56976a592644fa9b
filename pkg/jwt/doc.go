// Package jwt signs and verifies HS256 JSON Web Tokens on top of
// github.com/golang-jwt/jwt/v5.
//
// Service.Parse reports expiry separately from every other failure: on
// ErrExpiredToken the signature has already been verified and the claims are
// decoded, so callers can decide whether an expired token is still worth
// exchanging. Any other failure wraps ErrInvalidToken, ErrInvalidSignature or
// ErrUnexpectedSigningAlg together with the parser's reason.
//
// # Usage
//
//	svc, err := jwt.NewFromString(os.Getenv("JWT_SECRET"))
//	if err != nil {
//		// handle error
//	}
//
//	type Claims struct {
//		Role string `json:"role"`
//		jwt.RegisteredClaims
//	}
//
//	token, err := svc.Generate(&Claims{
//		Role: "admin",
//		RegisteredClaims: jwt.RegisteredClaims{
//			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
//		},
//	})
//
//	var parsed Claims
//	switch err := svc.Parse(token, &parsed); {
//	case errors.Is(err, jwt.ErrExpiredToken):
//		// parsed is populated and authentic, but stale
//	case err != nil:
//		// reject
//	}
//
// BearerTokenExtractor and HeaderTokenExtractor pull the raw token out of a
// request; SetToken/GetToken carry it through a context.Context.
package jwt

/*
Package authsdk provides a client SDK for the sessiond authentication service.

# SDKClient vs Session

  - SDKClient: public operations (health, registration, login)
  - Session: operations on behalf of a logged-in user, with automatic refresh

Create a client, register, then log in to get a Session:

	client := authsdk.NewSDKClient("https://auth.example.com")

	user, err := client.Register(ctx, authsdk.RegisterRequest{
		Email:     "alice@example.com",
		Password:  "correct-horse",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Liddell",
	})

	session, login, err := client.Login(ctx, authsdk.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})

# Credentials

A login yields four pieces of material:

  - an access token, sent as "Authorization: Bearer"
  - a binding secret (cookie __Secure-Fgp1) that must accompany the token
  - a session fingerprint (cookie __Secure-Fgp2) required to refresh
  - a refresh secret (cookie __Secure-Rft, also in the login body)

Session keeps all four and sends the cookies itself, since the server marks
them Secure and a standard cookie jar drops them on plain http.

# Refresh

Every refresh consumes the refresh secret and issues a new one. A refresh
that fails must not be retried with the old secret: the server will answer
401 and the user has to log in again.

	if err := session.Refresh(ctx); err != nil {
		// log in again
	}

# Errors

Failed requests return *APIError. Authentication failures all carry the
same code and description:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		// log in again
	}
*/
package authsdk

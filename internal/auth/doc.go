// Package auth manages the TickTick OAuth2 token lifecycle.
//
// A Manager walks a small state machine (unauthenticated, awaiting
// authorization, awaiting callback, authenticated, expired, refreshing)
// built with github.com/looplab/fsm. It builds the authorize URL, receives the
// loopback redirect, exchanges the code, and refreshes access tokens when the
// API rejects them. Concurrent refreshes for the same rejected token collapse
// into a single token endpoint call.
//
// # Example Usage
//
//	mgr, err := auth.NewManager(store)
//	if err != nil {
//	    return err
//	}
//	authURL, err := mgr.BeginAuthorization(auth.RedirectURI(auth.DefaultCallbackPort))
//	if err != nil {
//	    return err
//	}
//	fmt.Println("Open:", authURL)
//	code, err := mgr.AwaitCallback(ctx, auth.DefaultCallbackPort, 5*time.Minute)
//	if err != nil {
//	    return err
//	}
//	_, err = mgr.ExchangeCode(ctx, code)
package auth

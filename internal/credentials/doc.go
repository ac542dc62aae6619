// Package credentials loads and persists the TickTick OAuth client and token set.
//
// The default backend is a dotenv file (.env) holding the TICKTICK_* keys:
//
//	TICKTICK_CLIENT_ID="..."
//	TICKTICK_CLIENT_SECRET="..."
//	TICKTICK_ACCESS_TOKEN="..."
//	TICKTICK_REFRESH_TOKEN="..."
//
// Process environment variables with the same names override file values.
// KeyringStore moves the secret fields into the OS keyring and Watch reports
// changes made to the file by other processes.
//
// # Example Usage
//
//	store := credentials.NewFileStore(".env")
//	creds, err := store.Load()
//	if err != nil {
//	    return err
//	}
//	creds.AccessToken = token.AccessToken
//	if err := store.Save(creds); err != nil {
//	    return err
//	}
package credentials

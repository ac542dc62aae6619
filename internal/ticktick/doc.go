// Package ticktick is a client for the TickTick (and Dida365) open API.
//
// Every call asks its TokenSource for a bearer token. When the API answers
// 401 the client refreshes once and retries once; there are no other retries.
// Non-2xx responses surface as *RemoteAPIError and bad input as
// *ValidationError.
//
// # Example Usage
//
//	client := ticktick.NewClient(creds.APIBaseURL(), manager,
//	    ticktick.WithLocation(loc))
//	projects, err := client.GetProjects(ctx)
//	if err != nil {
//	    return err
//	}
//	task, err := client.CreateTask(ctx, ticktick.TaskSpec{
//	    Title:     "Write report",
//	    ProjectID: projects[0].ID,
//	    DueDate:   "2025-06-11T15:00:00",
//	    Priority:  ticktick.PriorityHigh,
//	})
package ticktick

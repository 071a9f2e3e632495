// Package wayfarer provides a typed HTTP client for the wayfarer
// attraction answering service.
//
//	client, _ := wayfarer.New("http://localhost:8080",
//	    wayfarer.WithAPIKey(os.Getenv("WAYFARER_API_KEY")),
//	)
//
//	ans, err := client.Ask(ctx, "quiet parks in Lisbon", wayfarer.WithTopN(5))
//	if err != nil {
//	    var apiErr *wayfarer.APIError
//	    if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusPaymentRequired {
//	        // token budget exhausted
//	    }
//	}
//	fmt.Println(ans.Text)
//
// Failed requests return *APIError carrying the HTTP status code and the
// detail message from the response body.
package wayfarer

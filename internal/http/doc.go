// Package http provides the client for the vendor document API.
//
// Downloading a file takes two requests:
//
//	client, _ := http.NewClient(http.DefaultOptions(), logger)
//
//	// 1. metadata: JSON document naming the direct download URL
//	asset, err := client.Resolve(ctx, item.Query)
//
//	// 2. payload: octet-stream body, read in 1 MiB chunks
//	data, err := client.Fetch(ctx, asset.URL, func(read, total int64) {
//	    fmt.Printf("Read %d B\n", read)
//	})
//
// A response with a status other than 200, or with an unexpected content
// type, is returned as a *FetchError.
package http

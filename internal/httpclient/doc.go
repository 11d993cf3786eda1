// Package httpclient provides the HTTP transport for upstream mod APIs and
// file transfers.
//
// This package handles:
//   - Small JSON/text GETs against the upstream APIs (status + body)
//   - Streamed GETs for file transfers
//   - Typed errors for the common failure status codes
//
// It deliberately does not retry: metadata lookups fail soft at the caller,
// and the transfer retry loop lives with the fetch stage.
//
// # Usage
//
//	client := httpclient.NewClient(httpclient.DefaultOptions())
//
//	status, body, err := client.Get(ctx, url, header)
//
//	rc, err := client.Download(ctx, url)
//	defer rc.Close()
package httpclient

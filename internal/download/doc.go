// Package download runs the download pipeline for a vendor manifest.
//
// # Manager
//
// The Manager coordinates the entire download process:
//
//  1. Load and filter the manifest
//  2. Resolve each item's download URL
//  3. Skip files already present in the destination tree
//  4. Fetch the file after a short pause
//  5. Move it into {destination}/{version}/{doctype}/{os}
//
// # Basic Usage
//
//	manager := download.NewManager(settings, client, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx, "files.json"); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := manager.StartDownloads(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Items are processed strictly one after the other; the first failure ends
// the run.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent.
// Message events carry a level (Info, Verbose, Warning, Error, Success);
// chunk progress events carry a ByteProgress instead. LogEvents adapts the
// callback to a logrus logger and EventHook goes the other way.
package download

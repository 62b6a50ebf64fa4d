// Package model defines the data structures shared by the manifest filter,
// the fetcher and the placement code.
//
// # ManifestRecord
//
// ManifestRecord is one decoded entry of the vendor manifest:
//
//	var records []model.ManifestRecord
//	err := json.Unmarshal(data, &records)
//
// # DownloadItem
//
// DownloadItem is a record that passed filtering, reduced to its metadata
// request path and destination directory:
//
//	item := model.NewDownloadItem(&rec, "dl")
//	fmt.Println(item.Query) // /api/document/download/ABC123
//	fmt.Println(item.Dir)   // dl/1.2.3/Firmware/Windows_Server
//
// # ResolvedAsset
//
// ResolvedAsset is the metadata response; its FileName is the last element
// of the download URL path.
package model

// Package manifest decodes the vendor manifest and reduces it to the list of
// files to download.
//
// Filtering applies three checks in order, and the first failing check
// decides the skip reason:
//
//  1. every category marker contains "Downloads"
//  2. Doc_Status contains the status filter ("Current" or "Archive")
//  3. DocType is one of the accepted document types
//
// Records that pass all checks become model.DownloadItem values.
package manifest

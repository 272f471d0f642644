// Package gdrive fetches a contract from Google Drive by file ID.
//
// URIs take the form gdrive://{fileID}. Uploaded files (PDF, DOCX, text)
// are downloaded as-is; native Google Docs are exported as DOCX. Other
// Google Workspace types (Sheets, Slides) are rejected.
//
// An OAuth access token with the drive.readonly scope is read from the
// environment on each fetch.
package gdrive

package graph

// RootRef is the folder reference for the root of a drive.
const RootRef = "root"

// ChildCountUnknown indicates the child count was not present in the API response.
const ChildCountUnknown = -1

// Item represents a drive item (file, folder, or package).
// Fields are normalized from the Graph API response; callers never see raw API data.
type Item struct {
	ID          string
	Name        string
	DriveID     string
	ParentID    string
	ParentPath  string // parentReference.path, e.g. "/drives/{id}/root:/Reports"
	Size        int64
	IsFolder    bool
	IsPackage   bool // OneNote packages have neither file nor folder facet
	MimeType    string
	ChildCount  int    // ChildCountUnknown if not present
	DownloadURL string // pre-authenticated, ephemeral; NEVER log
}

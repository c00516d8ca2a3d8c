// Package testutil provides an in-process fake of the Graph drive API and
// the Azure AD token endpoint for package and command tests. It depends only
// on stdlib so any package in the module can use it.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FakeToken is the access token the fake token endpoint issues and the fake
// Graph API accepts.
const FakeToken = "fake-access-token"

// FakeDriveID is the drive the fake Graph API serves.
const FakeDriveID = "b!FakeDrive"

// Node is one item of the fake drive tree.
type Node struct {
	ID       string
	Name     string
	Folder   bool
	MimeType string
	Size     int64
	Content  []byte
	Children []*Node

	// NoURLByPath omits the download URL from path lookups (but not from
	// lookups by ID), mimicking Graph responses that need a refetch.
	NoURLByPath bool

	// NoURL omits the download URL everywhere.
	NoURL bool

	// NoChildCount serves the folder facet without childCount.
	NoChildCount bool

	parent *Node
}

// Dir builds a folder node.
func Dir(id, name string, children ...*Node) *Node {
	return &Node{ID: id, Name: name, Folder: true, Children: children}
}

// File builds a file node with the given content.
func File(id, name, mimeType, content string) *Node {
	return &Node{ID: id, Name: name, MimeType: mimeType, Size: int64(len(content)), Content: []byte(content)}
}

// FakeGraph serves a Node tree over the Graph drive endpoints used by the
// proxy, plus POST /token and GET /content/{id}.
type FakeGraph struct {
	Server *httptest.Server
	Root   *Node

	// PageSize splits children listings into pages linked by
	// @odata.nextLink. 0 returns everything in one page.
	PageSize int

	mu     sync.Mutex
	byID   map[string]*Node
	calls  map[string]int
	status map[string]int
}

// NewFakeGraph starts a fake Graph server for root. The server is closed
// via t.Cleanup.
func NewFakeGraph(t *testing.T, root *Node) *FakeGraph {
	t.Helper()

	if root.ID == "" {
		root.ID = "root-id"
	}

	root.Name = "root"
	root.Folder = true

	fg := &FakeGraph{
		Root:   root,
		byID:   make(map[string]*Node),
		calls:  make(map[string]int),
		status: make(map[string]int),
	}
	fg.index(root, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", fg.handleToken)
	mux.HandleFunc("GET /content/{id}", fg.handleContent)
	mux.HandleFunc("GET /drives/", fg.handleDrive)

	fg.Server = httptest.NewServer(mux)
	t.Cleanup(fg.Server.Close)

	return fg
}

func (fg *FakeGraph) index(n, parent *Node) {
	n.parent = parent
	fg.byID[n.ID] = n

	for _, c := range n.Children {
		fg.index(c, n)
	}
}

// URL is the base URL to hand to graph.NewClient.
func (fg *FakeGraph) URL() string {
	return fg.Server.URL
}

// TokenURL is the client-credentials token endpoint.
func (fg *FakeGraph) TokenURL() string {
	return fg.Server.URL + "/token"
}

// Calls returns how many requests hit the given kind of endpoint:
// "children:<id>", "item:<id>", "path:<path>", "search", "token", "content:<id>".
func (fg *FakeGraph) Calls(key string) int {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	return fg.calls[key]
}

// FailWith makes every request counted under key answer with status.
func (fg *FakeGraph) FailWith(key string, status int) {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	fg.status[key] = status
}

// record counts a call and reports an injected failure status, if any.
func (fg *FakeGraph) record(key string) int {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	fg.calls[key]++

	return fg.status[key]
}

func (fg *FakeGraph) handleToken(w http.ResponseWriter, _ *http.Request) {
	if status := fg.record("token"); status != 0 {
		writeJSON(w, status, map[string]string{"error": "invalid_client", "error_description": "rejected by fake"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": FakeToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (fg *FakeGraph) handleContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if status := fg.record("content:" + id); status != 0 {
		w.WriteHeader(status)
		return
	}

	n, ok := fg.byID[id]
	if !ok || n.Folder {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	_, _ = w.Write(n.Content)
}

func (fg *FakeGraph) handleDrive(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+FakeToken {
		graphError(w, http.StatusUnauthorized, "InvalidAuthenticationToken")
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/drives/"+FakeDriveID)
	if !ok {
		graphError(w, http.StatusNotFound, "drive not found")
		return
	}

	switch {
	case rest == "/root":
		fg.serveItem(w, "item:root", fg.Root, true)
	case rest == "/root/children":
		fg.serveChildren(w, r, fg.Root)
	case strings.HasPrefix(rest, "/root:/") && strings.HasSuffix(rest, ":"):
		path := strings.TrimSuffix(strings.TrimPrefix(rest, "/root:/"), ":")
		fg.servePath(w, path)
	case strings.HasPrefix(rest, "/root/search(q='") && strings.HasSuffix(rest, "')"):
		q := strings.TrimSuffix(strings.TrimPrefix(rest, "/root/search(q='"), "')")
		fg.serveSearch(w, strings.ReplaceAll(q, "''", "'"))
	case strings.HasPrefix(rest, "/items/"):
		id := strings.TrimPrefix(rest, "/items/")
		if folderID, isChildren := strings.CutSuffix(id, "/children"); isChildren {
			n, found := fg.byID[folderID]
			if !found {
				fg.record("children:" + folderID)
				graphError(w, http.StatusNotFound, "itemNotFound")

				return
			}

			fg.serveChildren(w, r, n)

			return
		}

		n, found := fg.byID[id]
		if !found {
			fg.record("item:" + id)
			graphError(w, http.StatusNotFound, "itemNotFound")

			return
		}

		fg.serveItem(w, "item:"+id, n, true)
	default:
		graphError(w, http.StatusBadRequest, "unsupported request "+rest)
	}
}

func (fg *FakeGraph) serveItem(w http.ResponseWriter, key string, n *Node, withURL bool) {
	if status := fg.record(key); status != 0 {
		graphError(w, status, "injected failure")
		return
	}

	writeJSON(w, http.StatusOK, fg.itemJSON(n, withURL))
}

func (fg *FakeGraph) servePath(w http.ResponseWriter, path string) {
	n := fg.Root

	for _, seg := range strings.Split(path, "/") {
		var next *Node

		for _, c := range n.Children {
			if strings.EqualFold(c.Name, seg) {
				next = c
				break
			}
		}

		if next == nil {
			fg.record("path:" + path)
			graphError(w, http.StatusNotFound, "itemNotFound")

			return
		}

		n = next
	}

	fg.serveItem(w, "path:"+path, n, !n.NoURLByPath)
}

func (fg *FakeGraph) serveChildren(w http.ResponseWriter, r *http.Request, n *Node) {
	key := "children:" + n.ID
	if n == fg.Root {
		key = "children:root"
	}

	if status := fg.record(key); status != 0 {
		graphError(w, status, "injected failure")
		return
	}

	if !n.Folder {
		graphError(w, http.StatusBadRequest, "item is not a folder")
		return
	}

	start := 0
	if tok := r.URL.Query().Get("$skiptoken"); tok != "" {
		start, _ = strconv.Atoi(tok)
	}

	end := len(n.Children)
	if fg.PageSize > 0 && start+fg.PageSize < end {
		end = start + fg.PageSize
	}

	value := make([]map[string]any, 0, end-start)
	for _, c := range n.Children[start:end] {
		value = append(value, fg.itemJSON(c, true))
	}

	body := map[string]any{"value": value}
	if end < len(n.Children) {
		next := *r.URL
		q := next.Query()
		q.Set("$skiptoken", strconv.Itoa(end))
		next.RawQuery = q.Encode()
		body["@odata.nextLink"] = fg.Server.URL + next.Path + "?" + next.RawQuery
	}

	writeJSON(w, http.StatusOK, body)
}

func (fg *FakeGraph) serveSearch(w http.ResponseWriter, q string) {
	if status := fg.record("search"); status != 0 {
		graphError(w, status, "injected failure")
		return
	}

	var hits []map[string]any

	var visit func(n *Node)
	visit = func(n *Node) {
		for _, c := range n.Children {
			if strings.Contains(strings.ToLower(c.Name), strings.ToLower(q)) {
				// Search projections omit download URLs, like Graph often does.
				hits = append(hits, fg.itemJSON(c, false))
			}

			visit(c)
		}
	}
	visit(fg.Root)

	if hits == nil {
		hits = []map[string]any{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"value": hits})
}

// pathOf returns the slash-joined path of n below the root.
func pathOf(n *Node) string {
	var segs []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		segs = append([]string{cur.Name}, segs...)
	}

	return strings.Join(segs, "/")
}

func (fg *FakeGraph) itemJSON(n *Node, withURL bool) map[string]any {
	item := map[string]any{
		"id":   n.ID,
		"name": n.Name,
		"size": n.Size,
	}

	if n.parent != nil {
		parentPath := "/drives/" + FakeDriveID + "/root:"
		if p := pathOf(n.parent); p != "" {
			parentPath += "/" + p
		}

		item["parentReference"] = map[string]any{
			"driveId": FakeDriveID,
			"id":      n.parent.ID,
			"path":    parentPath,
		}
	}

	if n.Folder {
		facet := map[string]any{}
		if !n.NoChildCount {
			facet["childCount"] = len(n.Children)
		}

		item["folder"] = facet

		return item
	}

	item["file"] = map[string]any{"mimeType": n.MimeType}

	if withURL && !n.NoURL {
		item["@microsoft.graph.downloadUrl"] = fmt.Sprintf("%s/content/%s", fg.Server.URL, n.ID)
	}

	return item
}

func graphError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("request-id", "fake-request-id")
	writeJSON(w, status, map[string]any{"error": map[string]string{"code": code, "message": code}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

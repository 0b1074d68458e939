package domain

import (
	"sort"
	"strings"
)

// NodeType enumerates explorer tree node kinds. The declaration order is
// the display order within a tree level.
type NodeType int

const (
	NodeConnection NodeType = iota
	NodeDatabase
	NodeTablesFolder
	NodeTable
	NodeColumnsFolder
	NodeColumn
	NodeIndexesFolder
	NodeIndex
	NodeViewsFolder
	NodeView
	NodeFunctionsFolder
	NodeFunction
	NodeProceduresFolder
	NodeProcedure
	NodeTriggersFolder
	NodeTrigger
	NodeSequencesFolder
	NodeSequence
)

var nodeTypeNames = map[NodeType]string{
	NodeConnection:       "Connection",
	NodeDatabase:         "Database",
	NodeTablesFolder:     "Tables",
	NodeTable:            "Table",
	NodeColumnsFolder:    "Columns",
	NodeColumn:           "Column",
	NodeIndexesFolder:    "Indexes",
	NodeIndex:            "Index",
	NodeViewsFolder:      "Views",
	NodeView:             "View",
	NodeFunctionsFolder:  "Functions",
	NodeFunction:         "Function",
	NodeProceduresFolder: "Procedures",
	NodeProcedure:        "Procedure",
	NodeTriggersFolder:   "Triggers",
	NodeTrigger:          "Trigger",
	NodeSequencesFolder:  "Sequences",
	NodeSequence:         "Sequence",
}

func (t NodeType) String() string {
	if s, ok := nodeTypeNames[t]; ok {
		return s
	}
	return "Unknown"
}

// Folder key segments in node ids (see SplitNodeID).
const (
	FolderKeyTables     = "table_folder"
	FolderKeyViews      = "views_folder"
	FolderKeyFunctions  = "functions_folder"
	FolderKeyProcedures = "procedures_folder"
	FolderKeyTriggers   = "triggers_folder"
	FolderKeySequences  = "sequences_folder"
	FolderKeyColumns    = "columns_folder"
	FolderKeyIndexes    = "indexes_folder"
)

// DbNode is one lazily-loaded explorer tree node. Ids are hierarchical:
// <connection_id>[:<database>[:<folder_key>[:<object_name>]]].
type DbNode struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           NodeType `json:"type"`
	HasChildren    bool     `json:"hasChildren"`
	ChildrenLoaded bool     `json:"childrenLoaded"`
	Children       []DbNode `json:"children,omitempty"`
	Metadata       string   `json:"metadata,omitempty"`
	ConnectionID   string   `json:"connectionId"`
	ParentContext  string   `json:"parentContext,omitempty"`
}

// NewDbNode creates a leaf node with no children loaded.
func NewDbNode(id, name string, t NodeType, connectionID string) DbNode {
	return DbNode{ID: id, Name: name, Type: t, ConnectionID: connectionID}
}

// Less orders nodes by type, then case-insensitive name, then id.
func (n DbNode) Less(other DbNode) bool {
	if n.Type != other.Type {
		return n.Type < other.Type
	}
	a, b := strings.ToLower(n.Name), strings.ToLower(other.Name)
	if a != b {
		return a < b
	}
	return n.ID < other.ID
}

// SortChildren orders the immediate children.
func (n *DbNode) SortChildren() {
	sort.Slice(n.Children, func(i, j int) bool {
		return n.Children[i].Less(n.Children[j])
	})
}

// SortChildrenRecursive orders the whole subtree.
func (n *DbNode) SortChildrenRecursive() {
	n.SortChildren()
	for i := range n.Children {
		n.Children[i].SortChildrenRecursive()
	}
}

// NodeContext is the decomposition of a node id.
type NodeContext struct {
	ConnectionID string
	Database     string
	FolderKey    string
	ObjectName   string
}

// SplitNodeID recovers the id's context segments. Consumers rely on the
// fixed <conn>:<db>:<folder>:<object> grammar.
func SplitNodeID(id string) NodeContext {
	parts := strings.SplitN(id, ":", 4)
	var ctx NodeContext
	if len(parts) > 0 {
		ctx.ConnectionID = parts[0]
	}
	if len(parts) > 1 {
		ctx.Database = parts[1]
	}
	if len(parts) > 2 {
		ctx.FolderKey = parts[2]
	}
	if len(parts) > 3 {
		ctx.ObjectName = parts[3]
	}
	return ctx
}

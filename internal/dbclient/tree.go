package dbclient

import (
	"context"
	"fmt"

	"dbpilot/internal/domain"
)

// Explorer tree synthesis shared by both dialects. Node ids follow the
// <connection_id>[:<database>[:<folder_key>[:<object_name>]]] grammar.

func nodeID(parts ...string) string {
	id := parts[0]
	for _, p := range parts[1:] {
		id += ":" + p
	}
	return id
}

// BuildDatabaseTree introspects one database and returns its node with all
// object folders populated. The tables folder is always present; the other
// folders appear only when the database has objects of that kind.
func BuildDatabaseTree(ctx context.Context, p Plugin, conn *Conn, connectionID, database string) (domain.DbNode, error) {
	dbNode := domain.NewDbNode(nodeID(connectionID, database), database, domain.NodeDatabase, connectionID)
	dbNode.HasChildren = true
	dbNode.ChildrenLoaded = true

	tables, err := p.ListTables(ctx, conn, database)
	if err != nil {
		return domain.DbNode{}, err
	}
	tablesFolder := domain.DbNode{
		ID:             nodeID(dbNode.ID, domain.FolderKeyTables),
		Name:           fmt.Sprintf("Tables (%d)", len(tables)),
		Type:           domain.NodeTablesFolder,
		HasChildren:    len(tables) > 0,
		ChildrenLoaded: true,
		ConnectionID:   connectionID,
		ParentContext:  database,
	}
	for _, t := range tables {
		tableNode := domain.NewDbNode(nodeID(tablesFolder.ID, t.Name), t.Name, domain.NodeTable, connectionID)
		tableNode.HasChildren = true
		tableNode.Metadata = t.Comment
		tableNode.ParentContext = database
		tablesFolder.Children = append(tablesFolder.Children, tableNode)
	}
	dbNode.Children = append(dbNode.Children, tablesFolder)

	views, err := p.ListViews(ctx, conn, database)
	if err != nil {
		return domain.DbNode{}, err
	}
	if len(views) > 0 {
		folder := objectFolder(dbNode.ID, domain.FolderKeyViews, "Views", domain.NodeViewsFolder, connectionID, database, len(views))
		for _, v := range views {
			folder.Children = append(folder.Children,
				domain.NewDbNode(nodeID(folder.ID, v.Name), v.Name, domain.NodeView, connectionID))
		}
		dbNode.Children = append(dbNode.Children, folder)
	}

	functions, err := p.ListFunctions(ctx, conn, database)
	if err != nil {
		return domain.DbNode{}, err
	}
	if len(functions) > 0 {
		folder := objectFolder(dbNode.ID, domain.FolderKeyFunctions, "Functions", domain.NodeFunctionsFolder, connectionID, database, len(functions))
		for _, f := range functions {
			node := domain.NewDbNode(nodeID(folder.ID, f.Name), f.Name, domain.NodeFunction, connectionID)
			node.Metadata = f.ReturnType
			folder.Children = append(folder.Children, node)
		}
		dbNode.Children = append(dbNode.Children, folder)
	}

	procedures, err := p.ListProcedures(ctx, conn, database)
	if err != nil {
		return domain.DbNode{}, err
	}
	if len(procedures) > 0 {
		folder := objectFolder(dbNode.ID, domain.FolderKeyProcedures, "Procedures", domain.NodeProceduresFolder, connectionID, database, len(procedures))
		for _, f := range procedures {
			folder.Children = append(folder.Children,
				domain.NewDbNode(nodeID(folder.ID, f.Name), f.Name, domain.NodeProcedure, connectionID))
		}
		dbNode.Children = append(dbNode.Children, folder)
	}

	triggers, err := p.ListTriggers(ctx, conn, database)
	if err != nil {
		return domain.DbNode{}, err
	}
	if len(triggers) > 0 {
		folder := objectFolder(dbNode.ID, domain.FolderKeyTriggers, "Triggers", domain.NodeTriggersFolder, connectionID, database, len(triggers))
		for _, t := range triggers {
			node := domain.NewDbNode(nodeID(folder.ID, t.Name), t.Name, domain.NodeTrigger, connectionID)
			node.Metadata = t.TableName
			folder.Children = append(folder.Children, node)
		}
		dbNode.Children = append(dbNode.Children, folder)
	}

	sequences, err := p.ListSequences(ctx, conn, database)
	if err != nil {
		return domain.DbNode{}, err
	}
	if len(sequences) > 0 {
		folder := objectFolder(dbNode.ID, domain.FolderKeySequences, "Sequences", domain.NodeSequencesFolder, connectionID, database, len(sequences))
		for _, s := range sequences {
			folder.Children = append(folder.Children,
				domain.NewDbNode(nodeID(folder.ID, s.Name), s.Name, domain.NodeSequence, connectionID))
		}
		dbNode.Children = append(dbNode.Children, folder)
	}

	dbNode.SortChildrenRecursive()
	return dbNode, nil
}

func objectFolder(parentID, folderKey, label string, t domain.NodeType, connectionID, database string, count int) domain.DbNode {
	return domain.DbNode{
		ID:             nodeID(parentID, folderKey),
		Name:           fmt.Sprintf("%s (%d)", label, count),
		Type:           t,
		HasChildren:    count > 0,
		ChildrenLoaded: true,
		ConnectionID:   connectionID,
		ParentContext:  database,
	}
}

// LoadNodeChildren populates node.Children in place. Already-loaded nodes
// keep their cached children.
func LoadNodeChildren(ctx context.Context, p Plugin, conn *Conn, node *domain.DbNode) error {
	if node.ChildrenLoaded {
		return nil
	}

	switch node.Type {
	case domain.NodeConnection:
		databases, err := p.ListDatabases(ctx, conn)
		if err != nil {
			return err
		}
		for _, db := range databases {
			child := domain.NewDbNode(nodeID(node.ID, db), db, domain.NodeDatabase, node.ConnectionID)
			child.HasChildren = true
			node.Children = append(node.Children, child)
		}

	case domain.NodeDatabase:
		built, err := BuildDatabaseTree(ctx, p, conn, node.ConnectionID, node.Name)
		if err != nil {
			return err
		}
		node.Children = built.Children

	case domain.NodeTable:
		nctx := domain.SplitNodeID(node.ID)
		for _, f := range []struct {
			key   string
			label string
			t     domain.NodeType
		}{
			{domain.FolderKeyColumns, "Columns", domain.NodeColumnsFolder},
			{domain.FolderKeyIndexes, "Indexes", domain.NodeIndexesFolder},
		} {
			folder := domain.DbNode{
				ID:            nodeID(node.ID, f.key),
				Name:          f.label,
				Type:          f.t,
				HasChildren:   true,
				ConnectionID:  node.ConnectionID,
				ParentContext: nctx.Database,
				Metadata:      node.Name,
			}
			node.Children = append(node.Children, folder)
		}

	case domain.NodeColumnsFolder:
		nctx := domain.SplitNodeID(node.ID)
		cols, err := p.ListColumns(ctx, conn, nctx.Database, node.Metadata)
		if err != nil {
			return err
		}
		for _, c := range cols {
			child := domain.NewDbNode(nodeID(node.ID, c.Name), c.Name, domain.NodeColumn, node.ConnectionID)
			child.Metadata = c.DataType
			node.Children = append(node.Children, child)
		}

	case domain.NodeIndexesFolder:
		nctx := domain.SplitNodeID(node.ID)
		indexes, err := p.ListIndexes(ctx, conn, nctx.Database, node.Metadata)
		if err != nil {
			return err
		}
		for _, ix := range indexes {
			child := domain.NewDbNode(nodeID(node.ID, ix.Name), ix.Name, domain.NodeIndex, node.ConnectionID)
			child.Metadata = ix.IndexType
			node.Children = append(node.Children, child)
		}

	default:
		// Leaf or eagerly-populated kind; nothing to load.
	}

	node.HasChildren = len(node.Children) > 0
	node.ChildrenLoaded = true
	node.SortChildren()
	return nil
}

package store

import "context"

// RegistryExtension is the type-specific detail payload attached 1:1 to a
// registry item. The payload is a JSON document whose meaning is described by
// the static ExtensionSchema for the item's type; link fields inside it hold
// extension record IDs.
type RegistryExtension struct {
	ID         int32
	RegistryID int32
	Kind       ItemType
	Payload    map[string]any
}

// FindRegistryExtension is the find condition for extension records.
type FindRegistryExtension struct {
	ID         *int32
	RegistryID *int32
}

// UpdateRegistryExtension replaces an extension payload.
type UpdateRegistryExtension struct {
	ID      int32
	Payload map[string]any
}

// LinkField declares one payload field holding a reference to another
// extension record.
type LinkField struct {
	Field  string
	Target ItemType
}

// ChildTable declares one payload field holding an array of child rows, with
// the link fields those rows may carry.
type ChildTable struct {
	Field string
	Links []LinkField
}

// ExtensionSchema describes the link structure of one extension kind. The
// detail resolver walks payloads generically against this data instead of
// branching per type.
type ExtensionSchema struct {
	Kind     ItemType
	Links    []LinkField
	Children []ChildTable
}

// extensionSchemas is process-wide immutable configuration; never mutated
// after init.
var extensionSchemas = map[ItemType]ExtensionSchema{
	ItemTypeCluster: {
		Kind: ItemTypeCluster,
		Children: []ChildTable{
			{Field: "cluster_teams", Links: []LinkField{{Field: "team", Target: ItemTypeTeam}}},
		},
	},
	ItemTypeTeam: {
		Kind:  ItemTypeTeam,
		Links: []LinkField{{Field: "team_type", Target: ItemTypeTeamType}},
		Children: []ChildTable{
			{Field: "members", Links: []LinkField{
				{Field: "role", Target: ItemTypeAgentRole},
				{Field: "agent", Target: ItemTypeAgent},
			}},
		},
	},
	ItemTypeAgent: {
		Kind: ItemTypeAgent,
		Links: []LinkField{
			{Field: "agent_role", Target: ItemTypeAgentRole},
			{Field: "ui", Target: ItemTypeUI},
			{Field: "logic", Target: ItemTypeLogic},
		},
		Children: []ChildTable{
			{Field: "agent_tools", Links: []LinkField{{Field: "tool", Target: ItemTypeTool}}},
			{Field: "agent_skills", Links: []LinkField{{Field: "skill", Target: ItemTypeSkill}}},
		},
	},
	ItemTypeTeamType: {
		Kind: ItemTypeTeamType,
		Children: []ChildTable{
			{Field: "role_configs", Links: []LinkField{{Field: "role", Target: ItemTypeAgentRole}}},
		},
	},
	ItemTypeTool:      {Kind: ItemTypeTool},
	ItemTypeSkill:     {Kind: ItemTypeSkill},
	ItemTypeUI:        {Kind: ItemTypeUI},
	ItemTypeLogic:     {Kind: ItemTypeLogic},
	ItemTypeAgentRole: {Kind: ItemTypeAgentRole},
}

// SchemaFor returns the extension schema for an item type. Every item type
// has one; scalar-only kinds have no links or children.
func SchemaFor(itemType ItemType) (ExtensionSchema, bool) {
	schema, ok := extensionSchemas[itemType]
	return schema, ok
}

// GetRegistryExtension returns the extension matching find, or nil when
// absent.
func (s *Store) GetRegistryExtension(ctx context.Context, find *FindRegistryExtension) (*RegistryExtension, error) {
	return s.driver.GetRegistryExtension(ctx, find)
}

// UpdateRegistryExtension replaces an extension payload.
func (s *Store) UpdateRegistryExtension(ctx context.Context, update *UpdateRegistryExtension) (*RegistryExtension, error) {
	return s.driver.UpdateRegistryExtension(ctx, update)
}

// GetExtensionOwner resolves an extension record ID back to its owning
// registry item. Returns nil for dangling references.
func (s *Store) GetExtensionOwner(ctx context.Context, extensionID int32) (*RegistryItem, error) {
	return s.driver.GetExtensionOwner(ctx, extensionID)
}

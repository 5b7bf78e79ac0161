package seed

// roleDef is one pre-defined agent role with its capability flags. The flag
// values mirror the canonical definitions of the runtime's flag resolver.
type roleDef struct {
	Title       string
	Description string
	Flags       map[string]string
}

type teamTypeDef struct {
	Title       string
	Description string
	Overridable bool
}

var roles = []roleDef{
	{
		Title:       "Default",
		Description: "General-purpose standalone agent. Used by single-agent teams.",
		Flags: map[string]string{
			"can_post_townhall":       "allow",
			"can_read_townhall":       "allow",
			"can_mention_individuals": "allow",
			"can_mention_all":         "approval_required",
			"woken_by_direct_mention": "allow",
			"woken_by_all_mention":    "allow",
			"woken_by_any_townhall":   "deny",
			"can_send_text":           "allow",
			"can_receive_text":        "allow",
			"woken_by_text":           "allow",
			"spawn_preset":            "deny",
			"inline_preset":           "deny",
			"can_create_standard":     "deny",
			"can_create_ephemeral":    "deny",
			"can_kill_instance":       "deny",
			"spawnable":               "deny",
			"can_inject":              "allow",
			"injectable":              "deny",
			"inject_scope":            "spawns_only",
			"inject_target_roles":     "",
			"can_create_tasks":        "allow",
			"can_read_tasks":          "allow",
			"can_update_tasks":        "allow",
			"can_cancel_tasks":        "allow",
			"can_read_documents":      "allow",
			"can_create_documents":    "allow",
			"can_update_documents":    "allow",
			"can_delete_documents":    "approval_required",
			"can_mass_update":         "deny",
			"can_mass_delete":         "deny",
			"can_run_doc_method":      "allow",
			"single_user_instance":    "deny",
			"visible_in_agent_list":   "allow",
			"ui_mode":                 "chat",
		},
	},
	{
		Title:       "Communicator",
		Description: "User-facing agent. Handles chat, texting, townhall, task creation.",
		Flags: map[string]string{
			"can_post_townhall":       "allow",
			"can_read_townhall":       "allow",
			"can_mention_individuals": "allow",
			"can_mention_all":         "approval_required",
			"woken_by_direct_mention": "allow",
			"woken_by_all_mention":    "allow",
			"woken_by_any_townhall":   "deny",
			"can_send_text":           "allow",
			"can_receive_text":        "allow",
			"woken_by_text":           "allow",
			"spawn_preset":            "deny",
			"inline_preset":           "deny",
			"can_create_standard":     "deny",
			"can_create_ephemeral":    "deny",
			"can_kill_instance":       "deny",
			"spawnable":               "deny",
			"can_inject":              "allow",
			"injectable":              "deny",
			"inject_scope":            "team_role",
			"inject_target_roles":     "Orchestrator",
			"can_create_tasks":        "allow",
			"can_read_tasks":          "allow",
			"can_update_tasks":        "deny",
			"can_cancel_tasks":        "allow",
			"can_read_documents":      "allow",
			"can_create_documents":    "allow",
			"can_update_documents":    "allow",
			"can_delete_documents":    "approval_required",
			"can_mass_update":         "deny",
			"can_mass_delete":         "deny",
			"can_run_doc_method":      "allow",
			"single_user_instance":    "deny",
			"visible_in_agent_list":   "allow",
			"ui_mode":                 "chat",
		},
	},
	{
		Title:       "Orchestrator",
		Description: "Background task manager. Spawns workers, manages the task board.",
		Flags: map[string]string{
			"can_post_townhall":       "deny",
			"can_read_townhall":       "deny",
			"can_mention_individuals": "deny",
			"can_mention_all":         "deny",
			"woken_by_direct_mention": "deny",
			"woken_by_all_mention":    "deny",
			"woken_by_any_townhall":   "deny",
			"can_send_text":           "deny",
			"can_receive_text":        "deny",
			"woken_by_text":           "deny",
			"spawn_preset":            "allow",
			"inline_preset":           "deny",
			"can_create_standard":     "allow",
			"can_create_ephemeral":    "deny",
			"can_kill_instance":       "allow",
			"spawnable":               "deny",
			"can_inject":              "allow",
			"injectable":              "allow",
			"inject_scope":            "spawns_only",
			"inject_target_roles":     "",
			"can_create_tasks":        "allow",
			"can_read_tasks":          "allow",
			"can_update_tasks":        "allow",
			"can_cancel_tasks":        "allow",
			"can_read_documents":      "allow",
			"can_create_documents":    "allow",
			"can_update_documents":    "allow",
			"can_delete_documents":    "deny",
			"can_mass_update":         "deny",
			"can_mass_delete":         "deny",
			"can_run_doc_method":      "allow",
			"single_user_instance":    "allow",
			"visible_in_agent_list":   "deny",
			"ui_mode":                 "none",
		},
	},
	{
		Title:       "Worker",
		Description: "Spawnable execution unit. Does the actual work.",
		Flags: map[string]string{
			"can_post_townhall":       "deny",
			"can_read_townhall":       "deny",
			"can_mention_individuals": "deny",
			"can_mention_all":         "deny",
			"woken_by_direct_mention": "deny",
			"woken_by_all_mention":    "deny",
			"woken_by_any_townhall":   "deny",
			"can_send_text":           "deny",
			"can_receive_text":        "deny",
			"woken_by_text":           "deny",
			"spawn_preset":            "deny",
			"inline_preset":           "deny",
			"can_create_standard":     "deny",
			"can_create_ephemeral":    "deny",
			"can_kill_instance":       "deny",
			"spawnable":               "allow",
			"can_inject":              "allow",
			"injectable":              "allow",
			"inject_scope":            "parent_only",
			"inject_target_roles":     "",
			"can_create_tasks":        "deny",
			"can_read_tasks":          "allow",
			"can_update_tasks":        "deny",
			"can_cancel_tasks":        "deny",
			"can_read_documents":      "allow",
			"can_create_documents":    "allow",
			"can_update_documents":    "allow",
			"can_delete_documents":    "deny",
			"can_mass_update":         "deny",
			"can_mass_delete":         "deny",
			"can_run_doc_method":      "allow",
			"single_user_instance":    "deny",
			"visible_in_agent_list":   "allow",
			"ui_mode":                 "none",
		},
	},
}

var teamTypes = []teamTypeDef{
	{
		Title:       "Default",
		Description: "Permissive team type. All capabilities allowed for all roles. Overridable at agent level.",
		Overridable: true,
	},
	{
		Title:       "Standard",
		Description: "Balanced team type with role-appropriate permissions. Not overridable.",
		Overridable: false,
	},
}

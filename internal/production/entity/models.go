package entity

// Models lists every table owned by the production module, in migration order.
func Models() []interface{} {
	return []interface{}{
		&Order{},
		&DesignApproval{},
		&JenisItem{},
		&Item{},
		&Produk{},
		&WorkItem{},
		&WorkItemProduct{},
		&WorkItemCategory{},
		&WorkItemMaterial{},
		&WorkplanItem{},
		&StageEvidence{},
		&ExtensionRequest{},
		&ResponseTrack{},
		&ResponseTrackExtendLog{},
	}
}

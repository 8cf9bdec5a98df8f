package grid

// SeedColumns returns the default column layout used when no persisted
// state exists. Callers receive a fresh copy on every call.
func SeedColumns() []Column {
	return []Column{
		{ID: "A", Label: "Column A", Type: ColumnNumber},
		{ID: "B", Label: "Column B", Type: ColumnNumber},
		{
			ID:              "C",
			Label:           "Status",
			Type:            ColumnDropdown,
			DropdownOptions: []string{"Active", "Inactive", "Pending"},
		},
		{ID: "D", Label: "Notes", Type: ColumnText},
		{ID: "E", Label: "Total", Type: ColumnNumber},
	}
}

// SeedCells returns the sample data loaded into a brand-new sheet.
func SeedCells() CellMap {
	return CellMap{
		"A1": {ID: "A1", Value: "100", Row: 1, Column: "A"},
		"A2": {ID: "A2", Value: "200", Row: 2, Column: "A"},
		"A3": {ID: "A3", Value: "300", Row: 3, Column: "A"},
		"C1": {ID: "C1", Value: "Active", Row: 1, Column: "C"},
		"C2": {ID: "C2", Value: "Pending", Row: 2, Column: "C"},
		"C3": {ID: "C3", Value: "Inactive", Row: 3, Column: "C"},
		"D1": {ID: "D1", Value: "Test note 1", Row: 1, Column: "D"},
		"D2": {ID: "D2", Value: "Test note 2", Row: 2, Column: "D"},
		"D3": {ID: "D3", Value: "Test note 3", Row: 3, Column: "D"},
	}
}

// SeedState assembles the default aggregate: seed columns, sample cells,
// nothing archived, archived rows visible.
func SeedState() SheetState {
	return SheetState{
		Cells:            SeedCells(),
		Columns:          SeedColumns(),
		ArchivedRows:     NewRowSet(),
		ShowArchivedRows: true,
		SelectedCells:    NewCellSet(),
	}
}

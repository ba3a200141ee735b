package model

import "testing"

func TestParseEquipmentID(t *testing.T) {
	tests := []struct {
		id       string
		wantCode string
		wantSeq  int
		wantErr  bool
	}{
		{"R/001", "R", 1, false},
		{"R/999", "R", 999, false},
		{"R/1000", "R", 1000, false},
		{"ROPE/042", "ROPE", 42, false},
		{"R/9", "R", 9, false}, // legacy unpadded suffix
		{"R001", "", 0, true},
		{"R/abc", "", 0, true},
		{"R/-1", "", 0, true},
		{"", "", 0, true},
	}

	for _, tt := range tests {
		code, seq, err := ParseEquipmentID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEquipmentID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			continue
		}
		if err == nil && (code != tt.wantCode || seq != tt.wantSeq) {
			t.Errorf("ParseEquipmentID(%q) = (%q, %d), want (%q, %d)", tt.id, code, seq, tt.wantCode, tt.wantSeq)
		}
	}
}

func TestFormatEquipmentID(t *testing.T) {
	tests := []struct {
		code string
		seq  int
		want string
	}{
		{"R", 1, "R/001"},
		{"R", 42, "R/042"},
		{"R", 999, "R/999"},
		{"R", 1000, "R/1000"},
		{"ROPE", 7, "ROPE/007"},
	}

	for _, tt := range tests {
		if got := FormatEquipmentID(tt.code, tt.seq); got != tt.want {
			t.Errorf("FormatEquipmentID(%q, %d) = %q, want %q", tt.code, tt.seq, got, tt.want)
		}
	}
}

func TestValidEquipmentID(t *testing.T) {
	valid := []string{"R/001", "H/123", "ROPE/001", "D/9999"}
	invalid := []string{"r/001", "R/01", "R/ab1", "ROPES/001", "R-001", "R/001/2", "/001", "R/"}

	for _, id := range valid {
		if !ValidEquipmentID(id) {
			t.Errorf("ValidEquipmentID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if ValidEquipmentID(id) {
			t.Errorf("ValidEquipmentID(%q) = true, want false", id)
		}
	}
}

func TestValidJobID(t *testing.T) {
	valid := []string{"A000", "A001", "A999", "A1000"}
	invalid := []string{"B000", "a000", "A00", "A", "000", "A12B"}

	for _, id := range valid {
		if !ValidJobID(id) {
			t.Errorf("ValidJobID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if ValidJobID(id) {
			t.Errorf("ValidJobID(%q) = true, want false", id)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range []string{StatusActive, StatusRedTagged, StatusDestroyed, StatusInField, StatusWarehouse} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	if ValidStatus("active") || ValidStatus("") {
		t.Error("lowercase or empty status accepted")
	}

	if !ManualStatus(StatusActive) || !ManualStatus(StatusRedTagged) || !ManualStatus(StatusDestroyed) {
		t.Error("manual statuses rejected")
	}
	if ManualStatus(StatusInField) || ManualStatus(StatusWarehouse) {
		t.Error("job-driven statuses allowed through the manual path")
	}

	if !Assignable(StatusActive) || !Assignable(StatusWarehouse) {
		t.Error("assignable statuses rejected")
	}
	for _, s := range []string{StatusRedTagged, StatusDestroyed, StatusInField} {
		if Assignable(s) {
			t.Errorf("Assignable(%q) = true, want false", s)
		}
	}

	if CanReturnToService(StatusRedTagged) || CanReturnToService(StatusDestroyed) {
		t.Error("condemned gear reported as serviceable")
	}
	if !CanReturnToService(StatusInField) {
		t.Error("in-field gear reported as unserviceable")
	}
}

func TestEquipmentTypeValidate(t *testing.T) {
	tests := []struct {
		name     string
		et       EquipmentType
		problems int
	}{
		{
			"valid hard goods",
			EquipmentType{TypeCode: "D", Description: "Descender", InspectionIntervalMonths: 6},
			0,
		},
		{
			"valid soft goods",
			EquipmentType{TypeCode: "R", Description: "Rope", IsSoftGoods: true, LifespanYears: 10, InspectionIntervalMonths: 6},
			0,
		},
		{
			"soft goods missing lifespan",
			EquipmentType{TypeCode: "H", Description: "Harness", IsSoftGoods: true, InspectionIntervalMonths: 6},
			1,
		},
		{
			"lifespan on hard goods",
			EquipmentType{TypeCode: "D", Description: "Descender", LifespanYears: 5, InspectionIntervalMonths: 6},
			1,
		},
		{
			"bad code and missing description",
			EquipmentType{TypeCode: "rope", InspectionIntervalMonths: 6},
			2,
		},
		{
			"zero interval",
			EquipmentType{TypeCode: "B", Description: "Backup Device", InspectionIntervalMonths: 0},
			1,
		},
	}

	for _, tt := range tests {
		err := tt.et.Validate()
		if tt.problems == 0 {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tt.name, err)
			}
			continue
		}
		v := AsValidation(err)
		if v == nil {
			t.Errorf("%s: expected ValidationError, got %v", tt.name, err)
			continue
		}
		if len(v.Problems) != tt.problems {
			t.Errorf("%s: got %d problems (%v), want %d", tt.name, len(v.Problems), v.Problems, tt.problems)
		}
	}
}

// Package capability defines the closed set of permissions a role can grant.
package capability

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Set is the permission payload stored on a role. Unknown keys are rejected by Parse.
type Set struct {
	CanManageUsers              bool `json:"canManageUsers"`
	CanManageSystem             bool `json:"canManageSystem"`
	CanViewAllAttendance        bool `json:"canViewAllAttendance"`
	CanApproveAll               bool `json:"canApproveAll"`
	CanViewDepartmentAttendance bool `json:"canViewDepartmentAttendance"`
	CanApproveAttendance        bool `json:"canApproveAttendance"`
	CanViewOwnAttendance        bool `json:"canViewOwnAttendance"`
	CanRequestCorrection        bool `json:"canRequestCorrection"`
}

// Parse decodes a capability object. Keys outside Set are an error.
func Parse(raw []byte) (Set, error) {
	var s Set
	if len(bytes.TrimSpace(raw)) == 0 {
		return s, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Set{}, fmt.Errorf("invalid capability set: %w", err)
	}
	return s, nil
}

// Merge returns the union of s and others.
func (s Set) Merge(others ...Set) Set {
	out := s
	for _, o := range others {
		out.CanManageUsers = out.CanManageUsers || o.CanManageUsers
		out.CanManageSystem = out.CanManageSystem || o.CanManageSystem
		out.CanViewAllAttendance = out.CanViewAllAttendance || o.CanViewAllAttendance
		out.CanApproveAll = out.CanApproveAll || o.CanApproveAll
		out.CanViewDepartmentAttendance = out.CanViewDepartmentAttendance || o.CanViewDepartmentAttendance
		out.CanApproveAttendance = out.CanApproveAttendance || o.CanApproveAttendance
		out.CanViewOwnAttendance = out.CanViewOwnAttendance || o.CanViewOwnAttendance
		out.CanRequestCorrection = out.CanRequestCorrection || o.CanRequestCorrection
	}
	return out
}

// CanApprove reports whether the holder may decide leave applications at all.
func (s Set) CanApprove() bool {
	return s.CanApproveAll || s.CanApproveAttendance
}

// Admin returns the capabilities seeded for the admin role.
func Admin() Set {
	return Set{
		CanManageUsers:       true,
		CanManageSystem:      true,
		CanViewAllAttendance: true,
		CanApproveAll:        true,
	}
}

// Manager returns the capabilities seeded for the manager role.
func Manager() Set {
	return Set{
		CanViewDepartmentAttendance: true,
		CanApproveAttendance:        true,
	}
}

// Employee returns the capabilities seeded for the employee role.
func Employee() Set {
	return Set{
		CanViewOwnAttendance: true,
		CanRequestCorrection: true,
	}
}

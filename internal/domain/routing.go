package domain

import "errors"

var ErrNoInbox = errors.New("role has no approval inbox")

// ApproverRule describes who may receive a requester's leave request.
// An empty Department means any department.
type ApproverRule struct {
	Role       RoleName
	Department Department
}

// ResolveApprover maps a requester to the approver slot their requests go to.
func ResolveApprover(role RoleName, dept Department) ApproverRule {
	switch role {
	case RoleStudent:
		return ApproverRule{Role: RoleStaff, Department: dept}
	case RoleStaff:
		return ApproverRule{Role: RoleHOD, Department: dept}
	default:
		return ApproverRule{Role: RoleAdmin}
	}
}

func (r ApproverRule) Allows(approver *User) bool {
	if approver.Role() != r.Role {
		return false
	}
	return r.Department == "" || approver.Department == r.Department
}

// InboxScope is the visibility an approver has over leave requests.
type InboxScope struct {
	RequestTo           string
	RequesterDepartment Department
	ExcludeRequester    string
}

// ResolveInbox returns the inbox scope for viewer. all widens ADMIN to every
// request and HOD to their department.
func ResolveInbox(viewer Identity, all bool) (InboxScope, error) {
	switch viewer.Role {
	case RoleAdmin:
		if all {
			return InboxScope{}, nil
		}
		return InboxScope{RequestTo: viewer.ID}, nil
	case RoleHOD:
		if all {
			return InboxScope{RequesterDepartment: viewer.Department, ExcludeRequester: viewer.ID}, nil
		}
		return InboxScope{RequestTo: viewer.ID}, nil
	case RoleStaff:
		return InboxScope{RequestTo: viewer.ID}, nil
	}
	return InboxScope{}, ErrNoInbox
}

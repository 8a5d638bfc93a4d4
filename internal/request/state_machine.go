package request

import "fmt"

// AllowTransition 定义申请单状态机的允许流转关系。
// pending 由管理员审批动作推进到 approved / rejected；两个终态不再流转。
var AllowTransition = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

// IsTerminal 判断状态是否为终态。
func IsTerminal(s Status) bool {
	allowed, ok := AllowTransition[s]
	return ok && len(allowed) == 0
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to Status) bool {
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对申请单应用状态变更。仅校验状态机规则，
// 并发下的真正防线是仓储层对 status 列的 compare-and-swap（见 Repo.Approve / Repo.Reject）。
func ApplyTransition(r *Request, to Status) error {
	if r == nil {
		return fmt.Errorf("request is nil")
	}
	if IsTerminal(r.Status) {
		return fmt.Errorf("request already %s", r.Status)
	}
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("invalid request status transition: %s -> %s", r.Status, to)
	}
	r.Status = to
	return nil
}

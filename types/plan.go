package types

// ReconcilePlan is the create/update/delete set a refresh applies to bring
// the persisted inventory into agreement with the fetched snapshot.
type ReconcilePlan struct {
	Create []RemoteInstance
	Update []RemoteInstance
	Delete []InstanceKey
}

// Empty reports whether the plan changes nothing.
func (p ReconcilePlan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

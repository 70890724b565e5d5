package core

// StatusPolicy makes the occupancy transitions explicit. Status is never
// inferred from tenant presence; it only changes through these calls or a
// direct update.
type StatusPolicy struct {
	// RevertOnTenantRemoval marks a property vacant once its last tenant
	// is removed. Off by default: the reference backend never reverts.
	RevertOnTenantRemoval bool
}

// DefaultStatusPolicy mirrors the reference backend.
func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{}
}

// OnTenantAssigned returns the property as it should look after a tenant
// has been assigned to it.
func (StatusPolicy) OnTenantAssigned(p Property) Property {
	p.Status = Occupied
	return p
}

// OnTenantRemoved returns the property as it should look after one of its
// tenants was removed, given how many tenants still reference it.
func (sp StatusPolicy) OnTenantRemoved(p Property, remainingTenants int) Property {
	if sp.RevertOnTenantRemoval && remainingTenants == 0 {
		p.Status = Vacant
	}
	return p
}

// Toggle flips occupied and vacant, as the properties view does.
func (s PropertyStatus) Toggle() PropertyStatus {
	if s == Occupied {
		return Vacant
	}
	return Occupied
}

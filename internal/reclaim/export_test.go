package reclaim

// Count returns how many times Reclaim has run.
func (r *Reclaimer) Count() uint64 {
	return r.count.Load()
}

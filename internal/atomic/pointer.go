package atomic

// PointerSample is the input collaborator's view of the pointer for one tick.
//
// Active and BurstPending are edge flags owned by the sampler: Active
// decays after a short real-time window without movement, BurstPending is
// true for exactly the one sample following a click.
type PointerSample struct {
	Pos          Vec2
	Active       bool
	BurstPending bool
}

package ports

// Sync run outcomes reported to a SyncRecorder.
const (
	SyncResultSuccess = "success"
	SyncResultFailure = "failure"
)

// SyncRecorder receives scheduler observations.
type SyncRecorder interface {
	// RunFinished counts one completed run with its outcome.
	RunFinished(result string)

	// TickSkipped counts a tick dropped because a run was still in flight.
	TickSkipped()

	// QuotesStored reports the collection size after a run.
	QuotesStored(n int)
}

// NopSyncRecorder discards every observation.
type NopSyncRecorder struct{}

func (NopSyncRecorder) RunFinished(string) {}

func (NopSyncRecorder) TickSkipped() {}

func (NopSyncRecorder) QuotesStored(int) {}

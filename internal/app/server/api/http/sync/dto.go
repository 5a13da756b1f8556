package sync

import (
	"marketsync/internal/domain/sync"
)

type pushInput struct {
	Body sync.PushRequest
}

type pushOutput struct {
	Body sync.PushResponse
}

type pullInput struct {
	Body sync.PullRequest
}

type pullOutput struct {
	Body sync.PullResponse
}

type fullSyncInput struct {
	Body sync.FullSyncRequest
}

type fullSyncOutput struct {
	Body sync.FullSyncResponse
}

type checkpointInput struct {
	DeviceID string `query:"device_id" required:"true"`
}

type checkpointOutput struct {
	Body sync.CheckpointResponse
}

type conflictsInput struct{}

type conflictsOutput struct {
	Body sync.ConflictsResponse
}

type resolveInput struct {
	ID   string `path:"id"`
	Body sync.ResolveRequest
}

type resolveOutput struct {
	Body sync.ResolveResponse
}

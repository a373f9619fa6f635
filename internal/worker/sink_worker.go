package worker

import (
	"github.com/spec-kit/haf/internal/service"
)

// StartSinkWorker registers the sink handlers.
func StartSinkWorker(sinkService *service.SinkService) {
	if sinkService == nil {
		return
	}
	sinkService.RegisterHandlers()
}

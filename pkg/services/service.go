package services

import (
	"context"

	"github.com/go-mosf/mosf/pkg/event"
	"github.com/go-mosf/mosf/pkg/pipeline"
)

// ImageService adapts a pipeline process to the event service
// interface. The bound event's args seed the payload; the event value
// and widget id are added under value and widget_id. The finished
// payload goes to the event's callback.
type ImageService struct {
	proc pipeline.Process
}

// NewImageService wraps proc as a synchronous service, run inline on
// the loop thread. Use NewAsyncImageService for work that would stall
// the UI.
func NewImageService(proc pipeline.Process) *ImageService {
	return &ImageService{proc: proc}
}

// HandleEvent implements event.Service.
func (s *ImageService) HandleEvent(p event.Payload, args event.Args, cb event.Callback) error {
	payload := pipeline.Payload{}
	for k, v := range args {
		payload[k] = v
	}
	payload["widget_id"] = p.WidgetID
	if p.Value != nil {
		payload["value"] = p.Value
	}

	out, err := s.proc.Run(context.Background(), payload)
	if err != nil {
		return err
	}
	if cb != nil {
		cb(out)
	}
	return nil
}

// OnExit implements event.Service.
func (s *ImageService) OnExit() {}

// AsyncImageService is an ImageService the dispatcher runs off the
// loop thread, with the callback marshalled back.
type AsyncImageService struct {
	ImageService
}

// NewAsyncImageService wraps proc as an asynchronous service.
func NewAsyncImageService(proc pipeline.Process) *AsyncImageService {
	return &AsyncImageService{ImageService{proc: proc}}
}

// Async marks the service for off-loop dispatch.
func (s *AsyncImageService) Async() {}

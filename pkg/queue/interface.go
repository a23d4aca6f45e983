package queue

import (
	"github.com/ventrath/gantry/pkg/structs"
)

type Queue interface {
	// Register a handler for jobs dispatched to the given worker label.
	//
	// The handler is expected to execute the job's steps and record results
	// via the Meta it is handed. A worker may register any number of labels;
	// it only ever receives jobs whose runs_on matches one of them.
	Register(label string, handler func(work *Meta) error) error

	// Run the queue & process jobs (via Register funcs). This should block until Close() is called.
	Run() error

	// Enqueue a job on the queue matching its runs_on label.
	//
	// If it supports it, the Queue will return a unique id for the queued job with which we can
	// call Kill(the-given-id) to stop the job from running.
	Enqueue(job *structs.Job) (string, error)

	// Kill a queued job with ID given to us by Enqueue.
	Kill(queuedTaskID string) error

	// Close & shutdown the queue.
	Close() error
}

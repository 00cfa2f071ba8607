package db

import (
	"database/sql"
	"time"
)

// DBQueue funnels every database operation through a single worker
// goroutine. sqlite only tolerates one writer at a time; the queue also
// gives handlers a natural commit point, so a state mutation is durable
// once Execute returns.
type DBQueue struct {
	tasks      chan dbTask
	db         *sql.DB
	maxRetry   int
	retryDelay time.Duration
}

type dbTask struct {
	exec func(*sql.DB) (interface{}, error)
	resp chan dbResult
}

type dbResult struct {
	data interface{}
	err  error
}

func NewDBQueue(db *sql.DB) *DBQueue {
	return newQueue(db, 100*time.Millisecond)
}

// NewDBQueueForTest uses a minimal retry delay so failing tests stay fast.
func NewDBQueueForTest(db *sql.DB) *DBQueue {
	return newQueue(db, time.Millisecond)
}

func newQueue(db *sql.DB, retryDelay time.Duration) *DBQueue {
	q := &DBQueue{
		tasks:      make(chan dbTask, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: retryDelay,
	}
	go q.worker()
	return q
}

// Execute runs the task on the worker goroutine and blocks until it
// finishes. Transient failures are retried with backoff before the error is
// returned to the caller.
func (q *DBQueue) Execute(task func(*sql.DB) (interface{}, error)) (interface{}, error) {
	resp := make(chan dbResult, 1)
	q.tasks <- dbTask{exec: task, resp: resp}
	res := <-resp
	return res.data, res.err
}

func (q *DBQueue) worker() {
	for task := range q.tasks {
		task.resp <- q.runWithRetry(task)
	}
}

func (q *DBQueue) runWithRetry(task dbTask) dbResult {
	var lastErr error
	for attempt := 0; attempt < q.maxRetry; attempt++ {
		data, err := task.exec(q.db)
		if err == nil {
			return dbResult{data: data}
		}
		lastErr = err
		if attempt < q.maxRetry-1 {
			time.Sleep(time.Duration(attempt+1) * q.retryDelay)
		}
	}
	return dbResult{err: lastErr}
}

func (q *DBQueue) Close() {
	close(q.tasks)
}

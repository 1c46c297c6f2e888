package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	common_models "go-cmms/internal/common/models"
	"go-cmms/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	IpAddress string
	UserID    string
	Caller    string // Function name
	Time      time.Time
}

// LogSink persists one log record
type LogSink interface {
	Insert(ctx context.Context, record common_models.Log) error
}

type mongoLogSink struct {
	collection *mongo.Collection
}

func NewMongoLogSink(mongodb *database.MongodbDB) LogSink {
	return &mongoLogSink{collection: mongodb.DB.Collection("app_logs")}
}

func (s *mongoLogSink) Insert(ctx context.Context, record common_models.Log) error {
	_, err := s.collection.InsertOne(ctx, record)
	return err
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	sink    LogSink
	logChan chan LogEntry
	appId   string

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(sink LogSink, appId string) *DBLogWriter {
	writer := &DBLogWriter{
		sink:    sink,
		logChan: make(chan LogEntry, 1000), // Buffer 1000 logs
		appId:   appId,
		done:    make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog queues an entry; it never blocks the caller. Entries logged after
// Close are dropped.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}

	select {
	case w.logChan <- entry:
	default:
		fmt.Fprintln(os.Stderr, "DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close stops accepting entries and waits for the queue to drain
func (w *DBLogWriter) Close(ctx context.Context) error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.logChan)
		w.mu.Unlock()
	})
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)

	for entry := range w.logChan {
		created := entry.Time
		if created.IsZero() {
			created = time.Now()
		}

		record := common_models.Log{
			AppId:        w.appId,
			Message:      entry.Message,
			IpAddress:    entry.IpAddress,
			UserID:       entry.UserID,
			Caller:       entry.Caller,
			LogLevelId:   mapLevelToInt(entry.Level),
			CreatedOnUtc: created.UTC(),
		}

		// Errors are ignored to keep the app running
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = w.sink.Insert(ctx, record)
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}

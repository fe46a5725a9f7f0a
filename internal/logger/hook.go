package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// AsyncHook grava entradas de log numa goroutine própria.
// Quando o buffer enche, a entrada é descartada em vez de bloquear a requisição.
type AsyncHook struct {
	writers    []io.Writer
	entries    chan *logrus.Entry
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool
	bufferSize int
}

// NewAsyncHook cria um hook com um único writer
func NewAsyncHook(writer io.Writer, bufferSize int) *AsyncHook {
	return NewAsyncHookWithWriters([]io.Writer{writer}, bufferSize)
}

// NewAsyncHookWithWriters cria um hook com vários writers (arquivo, stdout)
func NewAsyncHookWithWriters(writers []io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	hook := &AsyncHook{
		writers:    writers,
		entries:    make(chan *logrus.Entry, bufferSize),
		bufferSize: bufferSize,
	}

	hook.wg.Add(1)
	go hook.processEntries()

	return hook
}

// Levels retorna os níveis tratados pelo hook
func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire enfileira a entrada sem bloquear
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		// Após Close, grava direto
		if isFiltered(entry) {
			return nil
		}
		data, err := format(entry)
		if err != nil {
			return err
		}
		for _, writer := range h.writers {
			_, _ = writer.Write(data)
		}
		return nil
	}

	select {
	case h.entries <- entry:
	default:
	}

	return nil
}

// processEntries consome a fila; um panic aqui nunca derruba o servidor
func (h *AsyncHook) processEntries() {
	defer h.wg.Done()

	for entry := range h.entries {
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Fprintf(os.Stderr, "[LOGGER PANIC] goroutine do logger recuperada: %v\n", r)
					debug.PrintStack()
				}
			}()

			if isFiltered(entry) {
				return
			}

			data, err := format(entry)
			if err != nil {
				return
			}

			for _, writer := range h.writers {
				if _, err := writer.Write(data); err != nil {
					continue
				}
			}
		}()
	}
}

// Close fecha a fila e espera as entradas pendentes
func (h *AsyncHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	close(h.entries)
	h.wg.Wait()
	return nil
}

// isFiltered verifica a marca "_filtered" colocada pelo FilterHook
func isFiltered(entry *logrus.Entry) bool {
	filtered, ok := entry.Data["_filtered"].(bool)
	return ok && filtered
}

// format formata a entrada sem o campo interno "_filtered"
func format(entry *logrus.Entry) ([]byte, error) {
	if _, ok := entry.Data["_filtered"]; ok {
		clone := *entry
		clone.Data = make(logrus.Fields, len(entry.Data))
		for k, v := range entry.Data {
			if k != "_filtered" {
				clone.Data[k] = v
			}
		}
		entry = &clone
	}
	if entry.Logger != nil && entry.Logger.Formatter != nil {
		return entry.Logger.Formatter.Format(entry)
	}
	line, err := entry.String()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

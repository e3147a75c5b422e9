package api

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"skylark/internal/entity"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func sessionID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

type streamEvent struct {
	Name string
	Data any
}

// session is the push channel of one SSE client; it implements
// entity.Listener on the instance it is streaming. Events are buffered;
// a client that cannot keep up loses intermediate updates rather than
// stalling the mutating request.
type session struct {
	id        string
	events    chan streamEvent
	listenees map[*entity.Instance]struct{}
}

func newSession() *session {
	return &session{
		id:        sessionID(),
		events:    make(chan streamEvent, 64),
		listenees: make(map[*entity.Instance]struct{}),
	}
}

func (s *session) push(name string, data any) {
	select {
	case s.events <- streamEvent{Name: name, Data: data}:
	default:
	}
}

func (s *session) Update(obj *entity.Instance) {
	s.push("update", obj.JSONRepr())
}

func (s *session) Delete(obj *entity.Instance) {
	s.push("delete", gin.H{"key": obj.Key()})
}

func (s *session) NewReference(obj, referrer *entity.Instance) {
	s.push("ref_added", gin.H{"referrer": referrer.JSONRepr()})
}

func (s *session) RemoveReference(obj, referrer *entity.Instance) {
	s.push("ref_removed", gin.H{"referrer": referrer.JSONRepr()})
}

func (s *session) AddListenee(obj *entity.Instance) {
	s.listenees[obj] = struct{}{}
}

func (s *session) RemoveListenee(obj *entity.Instance) {
	if _, ok := s.listenees[obj]; !ok {
		return
	}
	delete(s.listenees, obj)
	if len(s.listenees) == 0 {
		close(s.events)
	}
}

// GET /api/:entity/:key/stream — SSE feed of one live instance.
func StreamHandler(h *Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.typeByName(c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "entity not found"})
			return
		}
		if !t.RealTime() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "entity is not real-time"})
			return
		}
		key, err := parseKey(t, c.Param("key"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		h.mu.Lock()
		in, err := t.FindByKey(c.Request.Context(), h.store, key)
		if err != nil {
			h.mu.Unlock()
			status, payload := statusFor(err)
			c.JSON(status, payload)
			return
		}
		sess := newSession()
		in.AddListener(sess)
		h.mu.Unlock()

		defer func() {
			h.mu.Lock()
			in.RemoveListener(sess)
			h.mu.Unlock()
		}()

		c.Header("X-Stream-Session", sess.id)
		c.SSEvent("snapshot", in.JSONRepr())
		c.Writer.Flush()
		for {
			select {
			case ev, ok := <-sess.events:
				if !ok {
					return
				}
				c.SSEvent(ev.Name, ev.Data)
				c.Writer.Flush()
			case <-c.Request.Context().Done():
				return
			}
		}
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"wunderground-monitor/internal/search"
	"wunderground-monitor/internal/weather"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// searchReply is sent over the websocket for every query that was not
// superseded before it finished.
type searchReply struct {
	Query       string             `json:"query"`
	RequestID   string             `json:"request_id,omitempty"`
	Locations   []weather.Location `json:"locations"`
	Placeholder bool               `json:"placeholder,omitempty"`
	Error       string             `json:"error,omitempty"`
	Status      int                `json:"status,omitempty"`
}

// newSearcher gives each HTTP request or websocket connection its own
// Searcher, so supersession only applies within one client.
func (s *Server) newSearcher() *search.Searcher {
	return search.New(s.searchOpts)
}

func (s *Server) searchHandler(c *gin.Context) {
	q := c.Query("q")
	if strings.TrimSpace(q) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	res, err := s.newSearcher().Search(c.Request.Context(), q)
	respond(c, res, err)
}

// parseSearchMessage accepts either raw text or {"query": "..."}.
func parseSearchMessage(data []byte) string {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var msg struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(data, &msg); err == nil {
			return msg.Query
		}
	}
	return string(data)
}

func (s *Server) searchSocketHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Search websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	searcher := s.newSearcher()

	var (
		writeMu  sync.Mutex
		lastSent int
		wg       sync.WaitGroup
	)
	// reply drops anything older than a reply already sent.
	reply := func(seq int, r searchReply) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if seq < lastSent {
			return
		}
		lastSent = seq
		if err := conn.WriteJSON(r); err != nil {
			log.Printf("Search websocket write failed: %v", err)
		}
	}

	for seq := 1; ; seq++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Search websocket closed: %v", err)
			}
			break
		}

		text := parseSearchMessage(data)
		// Start runs here, in arrival order, so the newest message always
		// supersedes the ones before it.
		pending := searcher.Start(ctx, text)
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			res, err := pending.Wait(ctx)
			if errors.Is(err, search.ErrSuperseded) {
				return
			}
			if err != nil {
				status, _ := errorStatus(err)
				reply(seq, searchReply{Query: text, Locations: []weather.Location{}, Error: err.Error(), Status: status})
				return
			}
			locs := res.Locations
			if locs == nil {
				locs = []weather.Location{}
			}
			reply(seq, searchReply{
				Query:       text,
				RequestID:   res.RequestID,
				Locations:   locs,
				Placeholder: res.Placeholder,
			})
		}(seq)
	}

	searcher.Cancel()
	cancel()
	wg.Wait()
}

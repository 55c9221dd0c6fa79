// file: internal/server/handlers.go
// version: 1.0.0
// guid: 3b8f1d6a-5e2c-4a9b-b4d7-8c1e3f6a9d52

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oovz/calibre-changpei/internal/logging"
	"github.com/oovz/calibre-changpei/internal/metadata"
)

// identifyRequest builds the source request from query parameters.
func (s *Server) identifyRequest(c *gin.Context) metadata.IdentifyRequest {
	req := metadata.IdentifyRequest{
		Title:       c.Query("title"),
		Identifiers: map[string]string{},
		Timeout:     s.Timeout(),
	}
	if id := c.Query("id"); id != "" {
		req.Identifiers[metadata.ProviderID] = id
	}
	if authors := c.QueryArray("author"); len(authors) > 0 {
		req.Authors = authors
	}
	return req
}

func (s *Server) identify(c *gin.Context) {
	req := s.identifyRequest(c)
	if req.Identifiers[metadata.ProviderID] == "" && req.Title == "" {
		RespondWithBadRequest(c, "id or title is required")
		return
	}
	plain := ParseQueryBool(c, "plain", false)

	ctx := c.Request.Context()
	q := metadata.NewQueue[metadata.CandidateRecord]()
	s.source.Identify(ctx, logging.FromContext(ctx), q, req)

	items := q.Drain()
	if plain {
		for i := range items {
			items[i].Comments = metadata.PlainText(items[i].Comments)
		}
	}
	if items == nil {
		items = []metadata.CandidateRecord{}
	}
	RespondWithList(c, items, len(items))
}

func (s *Server) cover(c *gin.Context) {
	req := s.identifyRequest(c)
	if req.Identifiers[metadata.ProviderID] == "" && req.Title == "" {
		RespondWithBadRequest(c, "id or title is required")
		return
	}

	ctx := c.Request.Context()
	q := metadata.NewQueue[metadata.Cover]()
	s.source.DownloadCover(ctx, logging.FromContext(ctx), q, req)

	covers := q.Drain()
	if len(covers) == 0 {
		RespondWithNotFound(c, "cover", req.Identifiers[metadata.ProviderID])
		return
	}
	data := covers[0].Data
	c.Data(http.StatusOK, metadata.DetectCoverType(data), data)
}

func (s *Server) bookURL(c *gin.Context) {
	_, id, url, ok := s.source.GetBookURL(map[string]string{metadata.ProviderID: c.Query("id")})
	if !ok {
		RespondWithBadRequest(c, "id is required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "url": url, "name": s.source.GetBookURLName(metadata.ProviderID, id, url)})
}

func (s *Server) idFromURL(c *gin.Context) {
	id, ok := s.source.IDFromURL(c.Query("url"))
	if !ok {
		RespondWithNotFound(c, "book id", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

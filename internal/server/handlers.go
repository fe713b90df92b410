package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inspirehep/refextract/internal/engine"
	"github.com/inspirehep/refextract/internal/record"
	"github.com/inspirehep/refextract/internal/reference"
)

type publicationInfo struct {
	PubinfoFreetext string `json:"pubinfo_freetext"`
}

type journalInfoRequest struct {
	PublicationInfos []publicationInfo `json:"publication_infos" binding:"required"`
	JournalKBData    map[string]string `json:"journal_kb_data" binding:"required"`
}

type textRequest struct {
	Text          *string           `json:"text" binding:"required"`
	JournalKBData map[string]string `json:"journal_kb_data" binding:"required"`
}

type urlRequest struct {
	URL           *string           `json:"url" binding:"required"`
	JournalKBData map[string]string `json:"journal_kb_data" binding:"required"`
}

type listRequest struct {
	RawReferences []string          `json:"raw_references" binding:"required"`
	JournalKBData map[string]string `json:"journal_kb_data" binding:"required"`
}

// extractJournalInfo answers one entry per publication info: the journal
// element found in its free text, or an empty object.
func (s *Server) extractJournalInfo(c *gin.Context) {
	var req journalInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	overrides := journalOverrides(req.JournalKBData)
	infos := make([]any, 0, len(req.PublicationInfos))
	for _, info := range req.PublicationInfos {
		if info.PubinfoFreetext == "" {
			infos = append(infos, gin.H{})
			continue
		}
		el, err := s.engine.ExtractJournalReference(info.PubinfoFreetext, overrides)
		switch {
		case errors.Is(err, engine.ErrNoJournal):
			infos = append(infos, gin.H{})
		case err != nil:
			s.log.Error("extracting publication info", zap.String("freetext", info.PubinfoFreetext), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Can not extract publication info data. Reason: " + err.Error(),
			})
			return
		default:
			infos = append(infos, el)
		}
	}
	c.JSON(http.StatusOK, gin.H{"extracted_publication_infos": infos})
}

func (s *Server) extractReferencesFromText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	records, err := s.engine.ExtractFromString(*req.Text, true, journalOverrides(req.JournalKBData))
	if err != nil {
		s.referencesFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"extracted_references": nonNil(records)})
}

func (s *Server) extractReferencesFromURL(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	records, err := s.engine.ExtractFromURL(c.Request.Context(), *req.URL, journalOverrides(req.JournalKBData))
	if err != nil {
		s.referencesFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"extracted_references": nonNil(records)})
}

// extractReferencesFromList parses every raw reference on its own and
// keeps the first record of each. A reference that cannot be parsed is
// returned as its raw text.
func (s *Server) extractReferencesFromList(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	overrides := journalOverrides(req.JournalKBData)
	out := make([]reference.Record, 0, len(req.RawReferences))
	for _, raw := range req.RawReferences {
		records, err := s.engine.ExtractFromString(raw, true, overrides)
		if err != nil {
			s.log.Error("failed to extract reference", zap.String("reference", raw), zap.Error(err))
		}
		if err != nil || len(records) == 0 {
			out = append(out, reference.Record{record.FieldRawRef: {raw}})
			continue
		}
		out = append(out, records[0])
	}
	c.JSON(http.StatusOK, gin.H{"extracted_references": out})
}

func (s *Server) referencesFailed(c *gin.Context, err error) {
	s.log.Error("extracting references", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": "Can not extract references. Reason: " + err.Error(),
	})
}

func nonNil(records []reference.Record) []reference.Record {
	if records == nil {
		return []reference.Record{}
	}
	return records
}

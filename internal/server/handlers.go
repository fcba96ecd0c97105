package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feltkit/holdemd/internal/engine"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDeal(c *gin.Context) {
	g, err := s.svc.Deal(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	cur := -1
	if p := g.CurrentPlayer(); p != nil {
		cur = p.SeatIndex
	}
	c.JSON(http.StatusOK, dealResponse{
		HandNumber:  g.HandNumber,
		DealerSeat:  g.Players[g.DealerIndex].SeatIndex,
		SBSeat:      g.Players[g.SBIndex].SeatIndex,
		BBSeat:      g.Players[g.BBIndex].SeatIndex,
		CurrentSeat: cur,
		Pot:         g.TotalPot(),
		Phase:       g.Phase.String(),
	})
}

func (s *Server) handleAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalid(c, "malformed action request")
		return
	}
	if req.PlayerID == "" {
		s.invalid(c, "playerId is required")
		return
	}
	act, err := engine.ParseAction(req.Action.Type)
	if err != nil {
		s.invalid(c, fmt.Sprintf("unknown action type %q", req.Action.Type))
		return
	}
	if err := s.svc.Action(c.Request.Context(), c.Param("id"), req.PlayerID, act, req.Action.Amount, req.ActionID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleTimeout(c *gin.Context) {
	res, err := s.svc.ClaimTimeout(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, timeoutResponse{
		Success: true,
		Message: fmt.Sprintf("applied %s for %s", res.Applied, res.PlayerID),
	})
}

func (s *Server) handleState(c *gin.Context) {
	g, err := s.svc.GetState(c.Request.Context(), c.Param("id"), c.Query("viewer"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleReset(c *gin.Context) {
	if err := s.svc.Reset(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleJoin(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalid(c, "malformed join request")
		return
	}
	if req.PlayerID == "" {
		s.invalid(c, "playerId is required")
		return
	}
	if err := s.svc.Join(c.Request.Context(), c.Param("id"), req.PlayerID, req.Seat, req.BuyIn); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleLeave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalid(c, "malformed leave request")
		return
	}
	if req.PlayerID == "" {
		s.invalid(c, "playerId is required")
		return
	}
	if err := s.svc.Leave(c.Request.Context(), c.Param("id"), req.PlayerID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleSuggest(c *gin.Context) {
	playerID := c.Query("player")
	if playerID == "" {
		s.invalid(c, "player query parameter is required")
		return
	}
	sug, err := s.svc.Suggest(c.Request.Context(), c.Param("id"), playerID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sug)
}

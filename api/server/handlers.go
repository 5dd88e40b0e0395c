package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"stakechain/core/block"
	"stakechain/core/tx"
	"stakechain/types/ids"
)

// txSubmission is the wire shape of POST /api/tx.
type txSubmission struct {
	Sender    string      `json:"sender"`
	Recipient string      `json:"recipient"`
	Amount    float64     `json:"amount"`
	Fee       float64     `json:"fee"`
	Type      tx.Type     `json:"type"`
	Payload   *tx.Payload `json:"payload,omitempty"`
	Signature string      `json:"signature,omitempty"`
}

func (s *Server) handleSubmitTx(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateTxBody(body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var sub txSubmission
	if err := json.Unmarshal(body, &sub); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, err := tx.New(sub.Sender, sub.Recipient, sub.Amount, sub.Fee, sub.Type, sub.Payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t.Signature = sub.Signature

	receipt, err := s.chain.Submit(t)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusAccepted, receipt)
}

type accountRequest struct {
	Address        string  `json:"address"`
	InitialBalance float64 `json:"initialBalance"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.chain.CreateAccount(req.Address, req.InitialBalance); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"address": req.Address})
}

type stakeRequest struct {
	Delegator string  `json:"delegator"`
	Validator string  `json:"validator"`
	Amount    float64 `json:"amount"`
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.chain.Stake(req.Delegator, req.Validator, req.Amount); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "staked"})
}

func (s *Server) handleUnstake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.chain.Unstake(req.Delegator, req.Validator, req.Amount); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unstaking"})
}

func (s *Server) handleCompleteUnstaking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delegator string `json:"delegator"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	released := s.chain.CompleteUnstaking(req.Delegator)
	writeJSON(w, http.StatusOK, map[string]float64{"released": released})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	writeJSON(w, http.StatusOK, map[string]any{
		"address": address,
		"balance": s.chain.GetBalance(address),
	})
}

func (s *Server) handleBlockByIndex(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(r.PathValue("index"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid block index: %w", err))
		return
	}
	blk := s.chain.GetBlock(index)
	if blk == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no block at index %d", index))
		return
	}
	writeJSON(w, http.StatusOK, blk)
}

func (s *Server) handleBlockByHash(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	blk := s.chain.GetBlockByHash(hash)
	if blk == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no block with hash %s", hash))
		return
	}
	writeJSON(w, http.StatusOK, blk)
}

func (s *Server) handleGetTx(w http.ResponseWriter, r *http.Request) {
	id, err := ids.FromHex(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid transaction id: %w", err))
		return
	}
	t := s.chain.GetTransaction(id)
	if t == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("transaction %s not found", id.Short()))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleMempool(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.chain.PendingTransactions())
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"valid": s.chain.IsChainValid()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.chain.GetNetworkStats())
}

func (s *Server) handleValidators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.chain.Validators())
}

func (s *Server) handleDelegations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.chain.DelegationsOf(r.PathValue("address")))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.chain.Export())
}

func (s *Server) handleSwapPairs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.chain.SwapPairs())
}

type mineResponse struct {
	Block   *block.Block `json:"block"`
	Warning string       `json:"warning,omitempty"`
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	blk, err := s.chain.MineBlock()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if blk == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "nothing to mine"})
		return
	}
	resp := mineResponse{Block: blk}
	// The block is already appended; a persistence failure does not undo
	// it. Report the sealed block and flag the failed write, same as the
	// background miner loop does.
	if s.store != nil {
		if err := s.store.SaveBlock(blk); err != nil {
			log.Printf("[api] persisting block %d failed: %v", blk.Index, err)
			resp.Warning = fmt.Sprintf("block sealed but not persisted: %v", err)
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.chain.BurnTokens(req.Amount) {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("burn of %v rejected", req.Amount))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "burned"})
}

func (s *Server) handleCreateSwapPair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TokenA   string  `json:"tokenA"`
		TokenB   string  `json:"tokenB"`
		ReserveA float64 `json:"reserveA"`
		ReserveB float64 `json:"reserveB"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.chain.CreateSwapPair(req.TokenA, req.TokenB, req.ReserveA, req.ReserveB) {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("swap pair %s/%s rejected", req.TokenA, req.TokenB))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"chainLength": s.chain.Length(),
		"chainValid":  s.chain.IsChainValid(),
	})
}

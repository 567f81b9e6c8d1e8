package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/store"
	"github.com/yairfalse/lookout/types"
)

type createAccountRequest struct {
	AWSAccountID    string   `json:"aws_account_id" binding:"required"`
	IAMUserName     string   `json:"iam_user_name" binding:"required"`
	AccessKeyID     string   `json:"access_key_id" binding:"required"`
	SecretAccessKey string   `json:"secret_access_key" binding:"required"`
	Regions         []string `json:"regions" binding:"required,min=1"`
}

func (s *Server) handleCreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	regions, err := parseRegions(req.Regions)
	if err != nil {
		s.respondError(c, err)
		return
	}

	// The plaintext secret lives only in this request scope.
	sealed, err := s.sealer.Seal(c.Request.Context(), req.SecretAccessKey)
	if err != nil {
		s.respondError(c, err)
		return
	}

	account, err := s.store.CreateAccount(c.Request.Context(), types.Account{
		AWSAccountID:    req.AWSAccountID,
		IAMUserName:     req.IAMUserName,
		AccessKeyID:     req.AccessKeyID,
		EncryptedSecret: sealed,
		Regions:         regions,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.Info().Str("account_id", account.ID).Msg("account created")
	c.JSON(http.StatusCreated, account)
}

func (s *Server) handleGetAccount(c *gin.Context) {
	account, err := s.store.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

type updateAccountRequest struct {
	AWSAccountID    *string  `json:"aws_account_id"`
	IAMUserName     *string  `json:"iam_user_name"`
	AccessKeyID     *string  `json:"access_key_id"`
	SecretAccessKey *string  `json:"secret_access_key"`
	Regions         []string `json:"regions"`
}

func (s *Server) handleUpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	update := store.AccountUpdate{
		AWSAccountID: req.AWSAccountID,
		IAMUserName:  req.IAMUserName,
		AccessKeyID:  req.AccessKeyID,
	}

	if req.Regions != nil {
		regions, err := parseRegions(req.Regions)
		if err != nil {
			s.respondError(c, err)
			return
		}
		update.Regions = regions
	}

	if req.SecretAccessKey != nil {
		sealed, err := s.sealer.Seal(c.Request.Context(), *req.SecretAccessKey)
		if err != nil {
			s.respondError(c, err)
			return
		}
		update.EncryptedSecret = &sealed
	}

	account, err := s.store.UpdateAccount(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(c *gin.Context) {
	if err := s.store.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	s.logger.Info().Str("account_id", c.Param("id")).Msg("account deleted")
	c.Status(http.StatusNoContent)
}

func parseRegions(raw []string) ([]types.Region, error) {
	if len(raw) == 0 {
		return nil, errs.New(errs.KindValidation, "at least one region is required")
	}
	regions := make([]types.Region, 0, len(raw))
	for _, r := range raw {
		region, err := types.ParseRegion(r)
		if err != nil {
			return nil, errs.Wrap(errs.KindValidation, err, "invalid region")
		}
		regions = append(regions, region)
	}
	return regions, nil
}

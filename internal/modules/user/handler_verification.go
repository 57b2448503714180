package user

import (
	"context"

	"github.com/doimih/mini-crm/internal/contextx"
	"github.com/doimih/mini-crm/internal/httpx"
)

// --- DTOs ---

// VerifyEmailRequest carries the plaintext token from the emailed link. The
// parameter is deliberately not schema-required: a missing token goes through
// the same invalid-token path as a wrong one.
type VerifyEmailRequest struct {
	Token string `query:"token"`
}

// VerifyEmailResponse confirms a successful verification.
type VerifyEmailResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// ResendVerificationResponse confirms that a fresh verification email is on
// its way.
type ResendVerificationResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// --- Handlers ---

// VerifyEmailHandler consumes a verification token from the email link.
func (h *Handler) VerifyEmailHandler(ctx context.Context, input *VerifyEmailRequest) (*VerifyEmailResponse, error) {
	if err := h.service.VerifyEmail(ctx, input.Token); err != nil {
		h.logger.Warn("email verification failed", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &VerifyEmailResponse{}
	resp.Body.Message = "Email verified successfully"
	return resp, nil
}

// ResendVerificationHandler issues a fresh verification token for the
// authenticated caller. Reachable before verification via the gate carve-out.
func (h *Handler) ResendVerificationHandler(ctx context.Context, _ *struct{}) (*ResendVerificationResponse, error) {
	userID, ok := ctx.Value(contextx.UserIDKey).(string)
	if !ok || userID == "" {
		return nil, httpx.ToProblem(ctx, ErrUnauthenticated)
	}

	if err := h.service.ResendVerification(ctx, userID); err != nil {
		h.logger.Warn("resend verification failed", "user_id", userID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ResendVerificationResponse{}
	resp.Body.Message = "Verification email sent. Please check your inbox."
	return resp, nil
}

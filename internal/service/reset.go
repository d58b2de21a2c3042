package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"lumo/task-api/internal/apperr"
	"lumo/task-api/internal/store"
	"lumo/task-api/pkg/security"

	"go.uber.org/zap"
)

// Every reset confirmation failure gets this answer, whatever the reason.
var errResetToken = apperr.Validation("Invalid or expired token")

// RequestPasswordReset issues a reset token for the account registered with
// email, stores it and mails the reset link. A newer request replaces the
// stored token, so only the latest link works. If the mail can't be sent
// the token is withdrawn again.
func (s *Accounts) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation("Email is required", apperr.FieldViolation{Field: "email", Rule: "required"})
	}

	u, err := s.users.Store.FindOne(ctx, store.Filter{"email": email})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("No account is registered with this email")
		}

		return apperr.Internal(err)
	}

	token, err := s.signer.Sign(security.Claims{
		UserID:  u.ID,
		Purpose: security.PurposeReset,
	}, s.opts.ResetTTL)
	if err != nil {
		return apperr.Internal(err)
	}

	expires := s.now().Add(s.opts.ResetTTL)

	_, err = s.users.Store.Update(ctx, u.ID, store.Fields{
		"reset_token":      token,
		"reset_expires_at": expires,
	})
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to store reset token, %w", err))
	}

	link, err := ResetLink(s.opts.FrontendURL, token)
	if err != nil {
		s.withdrawResetToken(ctx, u.ID, token)
		return apperr.Internal(err)
	}

	if err := s.mailer.Send(ctx, u.Email, "Reset your Lumo password", resetMailBody(u.FirstName, link, int(s.opts.ResetTTL.Minutes()))); err != nil {
		s.withdrawResetToken(ctx, u.ID, token)
		return apperr.Internal(fmt.Errorf("failed to send reset mail, %w", err))
	}

	zap.L().Debug("Password reset requested", zap.String("userID", u.ID))

	return nil
}

// ConfirmPasswordReset sets a new password when token is the live reset
// token of its account. The token is consumed by the same write that
// replaces the digest, so it can succeed only once.
func (s *Accounts) ConfirmPasswordReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	if err := s.checkNewPassword(newPassword, confirmPassword, "newPassword"); err != nil {
		return err
	}

	if token == "" {
		return errResetToken
	}

	claims, err := s.signer.Verify(token, security.PurposeReset)
	if err != nil {
		return errResetToken
	}

	u, err := s.users.Store.Read(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errResetToken
		}

		return apperr.Internal(err)
	}

	if u.ResetToken == nil || subtle.ConstantTimeCompare([]byte(*u.ResetToken), []byte(token)) != 1 {
		return errResetToken
	}

	if !u.ResetPending(s.now()) {
		return errResetToken
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	_, err = s.users.Store.UpdateOne(ctx,
		store.Filter{"id": u.ID, "reset_token": token},
		store.Fields{
			"password_hash":    hash,
			"reset_token":      nil,
			"reset_expires_at": nil,
		})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Consumed or replaced by a concurrent request
			return errResetToken
		}

		return apperr.Internal(err)
	}

	if err := s.mailer.Send(ctx, u.Email, "Your Lumo password was changed", changedMailBody(u.FirstName)); err != nil {
		zap.L().Warn("Failed to send password change confirmation", zap.String("userID", u.ID), zap.Error(err))
	}

	return nil
}

// withdrawResetToken clears the reset fields if they still hold token. A
// newer token stored meanwhile is left alone.
func (s *Accounts) withdrawResetToken(ctx context.Context, userID, token string) {
	_, err := s.users.Store.UpdateOne(ctx,
		store.Filter{"id": userID, "reset_token": token},
		store.Fields{"reset_token": nil, "reset_expires_at": nil})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		zap.L().Error("Failed to withdraw reset token", zap.String("userID", userID), zap.Error(err))
	}
}

// ResetLink builds <base>/reset-password?token=<token>.
func ResetLink(base, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/reset-password")
	if err != nil {
		return "", fmt.Errorf("invalid frontend base url, %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("frontend base url %q must be absolute", base)
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func resetMailBody(name, link string, minutes int) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>Someone asked to reset the password of your Lumo account. Click <a href="%s">here</a> to choose a new one.</p>
<p>This link will expire in %d minutes. If you didn't ask for it you can ignore this email.</p>`,
		html.EscapeString(name), html.EscapeString(link), minutes)
}

func changedMailBody(name string) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>The password of your Lumo account was just changed. If this wasn't you, request a new reset link right away.</p>`,
		html.EscapeString(name))
}

package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		event := &shared.SettlementEvent{
			TransactionID: uuid.New(),
			WalletID:      uuid.New(),
			Kind:          shared.TransactionKindDeposit,
			Amount:        1000,
			Status:        shared.TransactionStatusPending,
			BalanceAfter:  2500,
			CreatedAt:     time.Now().Add(-time.Minute),
		}

		beforeCreation := time.Now()
		msg, err := NewMessage(event)
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, msg)

		assert.Equal(t, event.TransactionID, msg.TransactionID)
		assert.Equal(t, event.WalletID, msg.WalletID)
		assert.Equal(t, shared.OutboxStatusPending, msg.Status)
		assert.Equal(t, 0, msg.Attempts)
		assert.Nil(t, msg.LastAttemptAt)
		assert.WithinDuration(t, beforeCreation, msg.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)

		// Check payload
		var decoded shared.SettlementEvent
		err = json.Unmarshal(msg.Payload, &decoded)
		require.NoError(t, err)
		assert.Equal(t, event.TransactionID, decoded.TransactionID)
		assert.Equal(t, event.Amount, decoded.Amount)
		assert.Equal(t, event.BalanceAfter, decoded.BalanceAfter)
	})
}

func TestMessage_IncrementAttempts(t *testing.T) {
	t.Run("SuccessfulIncrement", func(t *testing.T) {
		initialTime := time.Now().Add(-time.Hour)
		msg := &Message{
			Attempts:      1,
			LastAttemptAt: &initialTime,
		}
		initialAttempts := msg.Attempts

		time.Sleep(10 * time.Millisecond) // Ensure time changes
		beforeUpdate := time.Now()
		msg.IncrementAttempts()
		afterUpdate := time.Now()

		assert.Equal(t, initialAttempts+1, msg.Attempts)
		require.NotNil(t, msg.LastAttemptAt)
		assert.True(t, msg.LastAttemptAt.After(initialTime))
		assert.WithinDuration(t, beforeUpdate, *msg.LastAttemptAt, afterUpdate.Sub(beforeUpdate)+time.Millisecond)
	})
}

func TestMessage_MarkAsProcessed(t *testing.T) {
	t.Run("SuccessfulMarkAsProcessed", func(t *testing.T) {
		initialTime := time.Now().Add(-time.Hour)
		msg := &Message{
			Status:        shared.OutboxStatusPending,
			LastAttemptAt: &initialTime,
		}
		time.Sleep(10 * time.Millisecond) // Ensure time changes
		beforeUpdate := time.Now()
		msg.MarkAsProcessed()
		afterUpdate := time.Now()

		assert.Equal(t, shared.OutboxStatusProcessed, msg.Status)
		require.NotNil(t, msg.LastAttemptAt)
		assert.True(t, msg.LastAttemptAt.After(initialTime))
		assert.WithinDuration(t, beforeUpdate, *msg.LastAttemptAt, afterUpdate.Sub(beforeUpdate)+time.Millisecond)
	})
}

func TestMessage_MarkAsFailed(t *testing.T) {
	t.Run("SuccessfulMarkAsFailed", func(t *testing.T) {
		initialTime := time.Now().Add(-time.Hour)
		msg := &Message{
			Status:        shared.OutboxStatusPending,
			LastAttemptAt: &initialTime,
		}
		time.Sleep(10 * time.Millisecond) // Ensure time changes
		beforeUpdate := time.Now()
		msg.MarkAsFailed()
		afterUpdate := time.Now()

		assert.Equal(t, shared.OutboxStatusFailedToPublish, msg.Status)
		require.NotNil(t, msg.LastAttemptAt)
		assert.True(t, msg.LastAttemptAt.After(initialTime))
		assert.WithinDuration(t, beforeUpdate, *msg.LastAttemptAt, afterUpdate.Sub(beforeUpdate)+time.Millisecond)
	})
}

func TestMessage_GetSettlementEvent(t *testing.T) {
	t.Run("SuccessfulGetSettlementEvent", func(t *testing.T) {
		settled := time.Now().Truncate(time.Millisecond)
		original := &shared.SettlementEvent{
			TransactionID: uuid.New(),
			WalletID:      uuid.New(),
			Kind:          shared.TransactionKindWithdrawal,
			Amount:        -500,
			Status:        shared.TransactionStatusCompleted,
			BalanceAfter:  1500,
			Rail:          shared.RailBank,
			BankName:      "Meezan Bank",
			CreatedAt:     time.Now().Truncate(time.Millisecond),
			SettledAt:     &settled,
		}
		payload, err := json.Marshal(original)
		require.NoError(t, err)

		msg := &Message{Payload: payload}
		decoded, err := msg.GetSettlementEvent()

		require.NoError(t, err)
		require.NotNil(t, decoded)
		assert.Equal(t, original.TransactionID, decoded.TransactionID)
		assert.Equal(t, original.WalletID, decoded.WalletID)
		assert.Equal(t, original.Kind, decoded.Kind)
		assert.Equal(t, original.Amount, decoded.Amount)
		assert.Equal(t, original.Status, decoded.Status)
		assert.Equal(t, original.BalanceAfter, decoded.BalanceAfter)
		assert.Equal(t, original.BankName, decoded.BankName)
		assert.True(t, original.CreatedAt.Equal(decoded.CreatedAt), "CreatedAt should match")
	})
}

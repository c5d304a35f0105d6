package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardhat-systems/siteledger/internal/domain/entity"
)

func TestLabourEntryMachine_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		trigger Trigger
		want    State
		wantErr error
	}{
		{name: "draft submit", from: entity.EntryStatusDraft, trigger: TriggerSubmit, want: StatePendingApproval},
		{name: "draft cancel", from: entity.EntryStatusDraft, trigger: TriggerCancel, want: StateCancelled},
		{name: "pending approve", from: entity.EntryStatusPendingApproval, trigger: TriggerApprove, want: StateApproved},
		{name: "pending reject", from: entity.EntryStatusPendingApproval, trigger: TriggerReject, want: StateRejected},
		{name: "pending cancel", from: entity.EntryStatusPendingApproval, trigger: TriggerCancel, want: StateCancelled},
		{name: "approved pay", from: entity.EntryStatusApproved, trigger: TriggerPay, want: StatePaid},
		{name: "rejected reopen", from: entity.EntryStatusRejected, trigger: TriggerReopen, want: StateDraft},
		{name: "draft approve skips review", from: entity.EntryStatusDraft, trigger: TriggerApprove, wantErr: ErrInvalidTransition},
		{name: "approved cancel", from: entity.EntryStatusApproved, trigger: TriggerCancel, wantErr: ErrInvalidTransition},
		{name: "approved approve again", from: entity.EntryStatusApproved, trigger: TriggerApprove, wantErr: ErrInvalidTransition},
		{name: "paid is terminal", from: entity.EntryStatusPaid, trigger: TriggerReopen, wantErr: ErrInvalidTransition},
		{name: "cancelled is terminal", from: entity.EntryStatusCancelled, trigger: TriggerSubmit, wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine, err := NewLabourEntryMachine(tt.from)
			require.NoError(t, err)

			err = machine.Fire(context.Background(), tt.trigger)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, State(tt.from), machine.State(), "state must not move on a refused trigger")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, machine.State())
		})
	}
}

func TestLabourEntryMachine_UnknownStatus(t *testing.T) {
	_, err := NewLabourEntryMachine("archived")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLabourEntryMachine_ReopenCycle(t *testing.T) {
	machine, err := NewLabourEntryMachine(entity.EntryStatusRejected)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, machine.Fire(ctx, TriggerReopen))
	require.NoError(t, machine.Fire(ctx, TriggerSubmit))
	require.NoError(t, machine.Fire(ctx, TriggerApprove))
	require.NoError(t, machine.Fire(ctx, TriggerPay))

	assert.Equal(t, StatePaid, machine.State())
	assert.True(t, machine.State().IsTerminal())
}

func TestSubmissionMachine_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		trigger Trigger
		want    string
		wantErr error
	}{
		{name: "draft submit", from: entity.SubmissionStatusDraft, trigger: TriggerSubmit, want: entity.SubmissionStatusPendingReview},
		{name: "pending approve", from: entity.SubmissionStatusPendingReview, trigger: TriggerApprove, want: entity.SubmissionStatusApproved},
		{name: "pending reject", from: entity.SubmissionStatusPendingReview, trigger: TriggerReject, want: entity.SubmissionStatusRejected},
		{name: "draft approve skips review", from: entity.SubmissionStatusDraft, trigger: TriggerApprove, wantErr: ErrInvalidTransition},
		{name: "approved is terminal", from: entity.SubmissionStatusApproved, trigger: TriggerReject, wantErr: ErrInvalidTransition},
		{name: "rejected is terminal", from: entity.SubmissionStatusRejected, trigger: TriggerSubmit, wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine, err := NewSubmissionMachine(tt.from)
			require.NoError(t, err)

			err = machine.Fire(context.Background(), tt.trigger)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, SubmissionStatus(machine.State()))
		})
	}
}

func TestSubmissionMachine_UnknownStatus(t *testing.T) {
	_, err := NewSubmissionMachine("parked")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmissionStatus_RoundTrip(t *testing.T) {
	for _, status := range []string{
		entity.SubmissionStatusDraft,
		entity.SubmissionStatusPendingReview,
		entity.SubmissionStatusApproved,
		entity.SubmissionStatusRejected,
	} {
		state, err := submissionStateFromStatus(status)
		require.NoError(t, err)
		assert.Equal(t, status, SubmissionStatus(state))
	}
}

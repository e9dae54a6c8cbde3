package guildtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guildlabs/guild-gateway/errors"
	"github.com/guildlabs/guild-gateway/guild"
)

// MockSubmitter is a testify mock for the guild.Submitter
// transport boundary
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(
	ctx context.Context,
	req guild.SubmitRequest,
) (*guild.Response, errors.Err) {
	args := m.Called(ctx, req)
	if args.Get(1) != nil {
		return nil, args.Get(1).(errors.Err)
	}

	return args.Get(0).(*guild.Response), nil
}

// MockResolver is a testify mock for the guild.Resolver lookup
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context) (guild.Handle, bool) {
	args := m.Called(ctx)
	return args.Get(0).(guild.Handle), args.Bool(1)
}

// MockInvoker is a testify mock for the guild.Invoker interface
type MockInvoker struct {
	mock.Mock
}

func (m *MockInvoker) Invoke(
	ctx context.Context,
	req guild.Request,
) (*guild.Response, errors.Err) {
	args := m.Called(ctx, req)
	if args.Get(1) != nil {
		return nil, args.Get(1).(errors.Err)
	}

	return args.Get(0).(*guild.Response), nil
}

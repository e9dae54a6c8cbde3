package guild_test

import (
	stderr "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/guildlabs/guild-gateway/errors"
	"github.com/guildlabs/guild-gateway/guild"
	"github.com/guildlabs/guild-gateway/guild/guildtest"
)

type invokeResult struct {
	res *guild.Response
	err errors.Err
}

func newOperation() (*guild.Operation, *guildtest.MockInvoker) {
	invoker := &guildtest.MockInvoker{}
	operation := guild.NewOperation(&guild.OperationServices{
		Logger:  Logger,
		Invoker: invoker,
	})

	return operation, invoker
}

// startInvoke runs Invoke on its own goroutine and returns a
// channel with the caller-visible result once it completes
func startInvoke(operation *guild.Operation, req guild.Request) <-chan invokeResult {
	done := make(chan invokeResult, 1)
	go func() {
		res, err := operation.Invoke(Context, req)
		done <- invokeResult{res: res, err: err}
	}()

	return done
}

func waitState(t *testing.T, operation *guild.Operation, state guild.State) guild.Snapshot {
	deadline := time.After(time.Second)
	for {
		snapshot := operation.State()
		if snapshot.State == state {
			return snapshot
		}

		select {
		case <-deadline:
			t.Fatalf("timed out waiting for state %s, last state %s", state, snapshot.State)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestOperationInitialIdle(t *testing.T) {
	operation, _ := newOperation()

	snapshot := operation.State()
	assert.Equal(t, guild.StateIdle, snapshot.State)
	assert.Nil(t, snapshot.Data)
	assert.Nil(t, snapshot.Err)
	assert.False(t, snapshot.Loading)
}

func TestOperationSuccessLifecycle(t *testing.T) {
	operation, invoker := newOperation()

	response := &guild.Response{Hash: "0xdeadbeef"}
	entered := make(chan struct{})
	release := make(chan struct{})
	invoker.On("Invoke", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(response, nil)

	done := startInvoke(operation, guild.Request{})

	// pending is observable before the transport responds
	<-entered
	snapshot := operation.State()
	assert.Equal(t, guild.StatePending, snapshot.State)
	assert.True(t, snapshot.Loading)
	assert.Nil(t, snapshot.Data)
	assert.Nil(t, snapshot.Err)

	close(release)
	result := <-done

	assert.Nil(t, result.err)
	assert.Equal(t, response, result.res)

	snapshot = operation.State()
	assert.Equal(t, guild.StateSucceeded, snapshot.State)
	assert.Equal(t, response, snapshot.Data)
	assert.Nil(t, snapshot.Err)
	assert.False(t, snapshot.Loading)
}

func TestOperationFailureLifecycle(t *testing.T) {
	operation, invoker := newOperation()

	failure := errors.New(errors.ErrSendTransaction, stderr.New("rejected"))
	invoker.On("Invoke", mock.Anything, mock.Anything).Return(nil, failure)

	res, err := operation.Invoke(Context, guild.Request{})

	assert.Nil(t, res)
	assert.Equal(t, errors.Err(failure), err)

	// the snapshot holds the same failure the caller received
	snapshot := operation.State()
	assert.Equal(t, guild.StateFailed, snapshot.State)
	assert.Equal(t, err, snapshot.Err)
	assert.Nil(t, snapshot.Data)
	assert.False(t, snapshot.Loading)
}

func TestOperationReinvokeAfterFailure(t *testing.T) {
	operation, invoker := newOperation()

	failure := errors.New(errors.ErrSendTransaction, stderr.New("rejected"))
	invoker.On("Invoke", mock.Anything, mock.Anything).Return(nil, failure).Once()
	invoker.On("Invoke", mock.Anything, mock.Anything).Return(&guild.Response{Hash: "0x1"}, nil).Once()

	_, err := operation.Invoke(Context, guild.Request{})
	assert.Error(t, err)

	_, err = operation.Invoke(Context, guild.Request{})
	assert.Nil(t, err)

	snapshot := operation.State()
	assert.Equal(t, guild.StateSucceeded, snapshot.State)
	assert.Nil(t, snapshot.Err)
}

func TestOperationResetIdempotent(t *testing.T) {
	operation, invoker := newOperation()

	invoker.On("Invoke", mock.Anything, mock.Anything).Return(&guild.Response{Hash: "0x1"}, nil)

	_, err := operation.Invoke(Context, guild.Request{})
	assert.Nil(t, err)

	idle := guild.Snapshot{State: guild.StateIdle}

	operation.Reset()
	assert.Equal(t, idle, operation.State())

	operation.Reset()
	assert.Equal(t, idle, operation.State())
}

func TestOperationResetWhilePending(t *testing.T) {
	operation, invoker := newOperation()

	entered := make(chan struct{})
	release := make(chan struct{})
	invoker.On("Invoke", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&guild.Response{Hash: "0x1"}, nil)

	done := startInvoke(operation, guild.Request{})
	<-entered

	operation.Reset()
	assert.Equal(t, guild.StateIdle, operation.State().State)

	// the late response still reaches the caller but must not
	// resurrect data into the reset state
	close(release)
	result := <-done
	assert.Nil(t, result.err)
	assert.Equal(t, "0x1", result.res.Hash)

	snapshot := operation.State()
	assert.Equal(t, guild.StateIdle, snapshot.State)
	assert.Nil(t, snapshot.Data)
	assert.Nil(t, snapshot.Err)
}

func TestOperationStaleResponseDropped(t *testing.T) {
	operation, invoker := newOperation()

	firstEntered := make(chan struct{})
	firstRelease := make(chan struct{})
	invoker.On("Invoke", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(firstEntered)
			<-firstRelease
		}).
		Return(&guild.Response{Hash: "0xfirst"}, nil).
		Once()

	secondEntered := make(chan struct{})
	secondRelease := make(chan struct{})
	invoker.On("Invoke", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(secondEntered)
			<-secondRelease
		}).
		Return(&guild.Response{Hash: "0xsecond"}, nil).
		Once()

	firstDone := startInvoke(operation, guild.Request{})
	<-firstEntered

	secondDone := startInvoke(operation, guild.Request{})
	<-secondEntered

	// the first response arrives after the second invocation
	// started; it must not update the observable state
	close(firstRelease)
	firstResult := <-firstDone
	assert.Equal(t, "0xfirst", firstResult.res.Hash)
	assert.Equal(t, guild.StatePending, operation.State().State)

	close(secondRelease)
	secondResult := <-secondDone
	assert.Equal(t, "0xsecond", secondResult.res.Hash)

	snapshot := waitState(t, operation, guild.StateSucceeded)
	assert.Equal(t, "0xsecond", snapshot.Data.Hash)
}

func TestOperationWatch(t *testing.T) {
	operation, invoker := newOperation()

	invoker.On("Invoke", mock.Anything, mock.Anything).Return(&guild.Response{Hash: "0x1"}, nil)

	c := make(chan guild.Snapshot, 8)
	operation.Watch(c)

	_, err := operation.Invoke(Context, guild.Request{})
	assert.Nil(t, err)

	pending := <-c
	assert.Equal(t, guild.StatePending, pending.State)
	assert.True(t, pending.Loading)

	succeeded := <-c
	assert.Equal(t, guild.StateSucceeded, succeeded.State)
	assert.Equal(t, "0x1", succeeded.Data.Hash)

	operation.Unwatch(c)
	operation.Reset()
	assert.Equal(t, 0, len(c))
}

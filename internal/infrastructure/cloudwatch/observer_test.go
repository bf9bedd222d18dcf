package cloudwatch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/go-verification-mailer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMetrics struct{ mock.Mock }

func (m *mockMetrics) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, in)
	return &cloudwatch.PutMetricDataOutput{}, args.Error(0)
}

func metricNamed(ns, name string) interface{} {
	return mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
		return aws.ToString(in.Namespace) == ns &&
			len(in.MetricData) == 1 &&
			aws.ToString(in.MetricData[0].MetricName) == name &&
			aws.ToFloat64(in.MetricData[0].Value) == 1 &&
			in.MetricData[0].Unit == types.StandardUnitCount
	})
}

func TestEmailSent_PutsCounter(t *testing.T) {
	m := &mockMetrics{}
	m.On("PutMetricData", mock.Anything, metricNamed("VerificationMailer", domain.MetricEmailsSent)).Return(nil)

	NewObserver(m, "VerificationMailer", slog.Default()).EmailSent(context.Background())

	m.AssertExpectations(t)
}

func TestFailure_PutsKindCounter(t *testing.T) {
	m := &mockMetrics{}
	m.On("PutMetricData", mock.Anything, metricNamed("ns", domain.KindEmailSendFailure)).Return(nil)

	NewObserver(m, "ns", slog.Default()).Failure(context.Background(), domain.KindEmailSendFailure)

	m.AssertExpectations(t)
}

func TestPut_ErrorIsLoggedNotPropagated(t *testing.T) {
	var buf bytes.Buffer
	m := &mockMetrics{}
	m.On("PutMetricData", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	obs := NewObserver(m, "ns", slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NotPanics(t, func() { obs.EmailSent(context.Background()) })

	assert.Contains(t, buf.String(), "metric emission failed")
	assert.Contains(t, buf.String(), "throttled")
}

func TestPut_SurvivesCancelledInvocationContext(t *testing.T) {
	m := &mockMetrics{}
	m.On("PutMetricData", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewObserver(m, "ns", slog.Default()).Failure(ctx, domain.KindDatabaseUpdateFailure)

	m.AssertExpectations(t)
}

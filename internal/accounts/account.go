package accounts

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/sts"
)

var ErrAccountIDMissing = errors.New("caller identity has no account")

type STSClientInterface interface {
	GetCallerIdentity(ctx context.Context, input *sts.GetCallerIdentityInput, opts ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

func GetAccountID(ctx context.Context, stsClient STSClientInterface) (string, error) {
	result, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}

	if result.Account == nil {
		return "", ErrAccountIDMissing
	}
	return *result.Account, nil
}

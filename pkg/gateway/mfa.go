package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// AllMFAEnabledText is returned when every IAM user has an MFA device.
const AllMFAEnabledText = "All users have MFA enabled."

type iamUserList struct {
	Users []struct {
		UserName string `json:"UserName"`
	} `json:"Users"`
}

type mfaDeviceList struct {
	MFADevices []struct {
		SerialNumber string `json:"SerialNumber"`
	} `json:"MFADevices"`
}

// UsersWithoutMFA is the canned IAM posture report: list every user, then
// cross-reference each against their MFA device list. Both stages go through
// the normal validate -> execute -> normalize pipeline; a mid-report failure
// aborts the whole report rather than returning a partial list.
func (g *Gateway) UsersWithoutMFA(ctx context.Context) (string, error) {
	if g.desc.Provider != ProviderAWS {
		return "", fmt.Errorf("MFA report is AWS-only, gateway is %s", g.desc.Provider)
	}

	resp, err := g.Run(ctx, "aws iam list-users --output json")
	if err != nil {
		return "", err
	}
	if resp.Status != StatusSuccess {
		return "", fmt.Errorf("listing users failed: %s", resp.Text)
	}

	var users iamUserList
	if err := json.Unmarshal([]byte(resp.Text), &users); err != nil {
		return "", fmt.Errorf("failed to parse user list: %w", err)
	}

	var missing []string
	for _, u := range users.Users {
		cmd := fmt.Sprintf("aws iam list-mfa-devices --user-name %s --output json", u.UserName)
		resp, err := g.Run(ctx, cmd)
		if err != nil {
			// A hostile username trips the validator here; fail the report,
			// never skip the user.
			return "", fmt.Errorf("MFA lookup for %q rejected: %w", u.UserName, err)
		}
		if resp.Status != StatusSuccess {
			return "", fmt.Errorf("MFA lookup for %q failed: %s", u.UserName, resp.Text)
		}

		var devices mfaDeviceList
		if err := json.Unmarshal([]byte(resp.Text), &devices); err != nil {
			return "", fmt.Errorf("failed to parse MFA devices for %q: %w", u.UserName, err)
		}
		if len(devices.MFADevices) == 0 {
			missing = append(missing, u.UserName)
		}
	}

	if len(missing) == 0 {
		return AllMFAEnabledText, nil
	}
	return strings.Join(missing, "\n"), nil
}

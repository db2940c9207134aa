package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

// registerAPISteps registers HTTP request steps.
func registerAPISteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the API server is running$`, theAPIServerIsRunning)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, iSendARequestTo)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, iSendARequestToWithBody)
	ctx.Step(`^I set header "([^"]*)" to "([^"]*)"$`, iSetHeaderTo)
	ctx.Step(`^I am authenticated as "([^"]*)"$`, iAmAuthenticatedAs)
	ctx.Step(`^I am not authenticated$`, iAmNotAuthenticated)
}

// registerResponseSteps registers response validation steps.
func registerResponseSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response should be JSON$`, theResponseShouldBeJSON)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, theResponseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should exist$`, theResponseFieldShouldExist)
	ctx.Step(`^the response field "([^"]*)" should have (\d+) items?$`, theResponseFieldShouldHaveItems)
}

func theAPIServerIsRunning(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil || tc.server == nil {
		return fmt.Errorf("test server is not running")
	}
	return nil
}

func iSendARequestTo(ctx context.Context, method, endpoint string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	return ctx, tc.executeRequest(method, endpoint, nil)
}

func iSendARequestToWithBody(ctx context.Context, method, endpoint string, body *godog.DocString) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	return ctx, tc.executeRequest(method, endpoint, []byte(tc.replacePlaceholders(body.Content)))
}

func iSetHeaderTo(ctx context.Context, header, value string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	tc.requestHeaders[header] = value
	return ctx, nil
}

// iAmAuthenticatedAs signs a token for email. The same email always maps to
// the same user within a scenario.
func iAmAuthenticatedAs(ctx context.Context, email string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}

	userID, ok := tc.users[email]
	if !ok {
		userID = uuid.New()
		tc.users[email] = userID
	}

	token, err := tc.injector.TokenService.GenerateAccessToken(userID, email, tc.cfg.JWT.AccessTokenExpiry)
	if err != nil {
		return ctx, fmt.Errorf("failed to sign token: %w", err)
	}
	tc.accessToken = token
	return ctx, nil
}

func iAmNotAuthenticated(ctx context.Context) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	tc.accessToken = ""
	return ctx, nil
}

func (tc *TestContext) replacePlaceholders(content string) string {
	content = strings.ReplaceAll(content, "{{budget_id}}", tc.budgetID.String())
	content = strings.ReplaceAll(content, "{{line_item_id}}", tc.lastItemID.String())
	for name, id := range tc.budgetIDs {
		content = strings.ReplaceAll(content, "{{budget:"+name+"}}", id.String())
	}
	for name, id := range tc.lineItemIDs {
		content = strings.ReplaceAll(content, "{{line_item:"+name+"}}", id.String())
	}
	return content
}

func (tc *TestContext) executeRequest(method, endpoint string, payload []byte) error {
	url := tc.server.URL + tc.replacePlaceholders(endpoint)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	for key, value := range tc.requestHeaders {
		req.Header.Set(key, value)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	tc.response = resp
	tc.responseBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	tc.captureIDs()
	return nil
}

// captureIDs remembers the ids of created budgets and line items so later
// steps can refer to them.
func (tc *TestContext) captureIDs() {
	if tc.response.StatusCode != http.StatusCreated {
		return
	}

	data, err := tc.responseJSON()
	if err != nil {
		return
	}

	if item, ok := data["line_item"].(map[string]any); ok {
		if id, err := uuid.Parse(fmt.Sprint(item["id"])); err == nil {
			tc.lastItemID = id
			tc.lineItemIDs[fmt.Sprint(item["name"])] = id
		}
		return
	}

	if id, err := uuid.Parse(fmt.Sprint(data["id"])); err == nil {
		tc.budgetID = id
		tc.budgetIDs[fmt.Sprint(data["name"])] = id
	}
}

func (tc *TestContext) responseJSON() (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.responseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w (body: %s)", err, string(tc.responseBody))
	}
	return data, nil
}

func theResponseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if tc.response == nil {
		return fmt.Errorf("no response received")
	}
	if tc.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expectedStatus, tc.response.StatusCode, string(tc.responseBody))
	}
	return nil
}

func theResponseShouldBeJSON(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	var js json.RawMessage
	if err := json.Unmarshal(tc.responseBody, &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}

func theResponseFieldShouldBe(ctx context.Context, field, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	data, err := tc.responseJSON()
	if err != nil {
		return err
	}

	value := getFieldValue(data, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %s", field, string(tc.responseBody))
	}
	return compareValue(field, value, expected)
}

func theResponseFieldShouldExist(ctx context.Context, field string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	data, err := tc.responseJSON()
	if err != nil {
		return err
	}

	if getFieldValue(data, field) == nil {
		return fmt.Errorf("field '%s' not found in response: %s", field, string(tc.responseBody))
	}
	return nil
}

func theResponseFieldShouldHaveItems(ctx context.Context, field string, count int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	data, err := tc.responseJSON()
	if err != nil {
		return err
	}

	items, ok := getFieldValue(data, field).([]any)
	if !ok {
		return fmt.Errorf("field '%s' is not a list: %s", field, string(tc.responseBody))
	}
	if len(items) != count {
		return fmt.Errorf("expected %d items in '%s', got %d", count, field, len(items))
	}
	return nil
}

// compareValue matches numbers numerically and everything else by its
// printed form.
func compareValue(field string, actual any, expected string) error {
	if number, ok := actual.(float64); ok {
		want, err := strconv.ParseFloat(expected, 64)
		if err != nil {
			return fmt.Errorf("field '%s' is a number, cannot compare with '%s'", field, expected)
		}
		if diff := number - want; diff > 1e-6 || diff < -1e-6 {
			return fmt.Errorf("field '%s' expected %s, got %v", field, expected, number)
		}
		return nil
	}

	if got := fmt.Sprintf("%v", actual); got != expected {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expected, got)
	}
	return nil
}

// getFieldValue walks a dot separated path through maps and lists.
func getFieldValue(object any, dotSeparatedField string) any {
	field := object
	for _, current := range strings.Split(dotSeparatedField, ".") {
		switch v := field.(type) {
		case map[string]any:
			field = v[current]
		case []any:
			i, err := strconv.Atoi(current)
			if err != nil || i < 0 || i >= len(v) {
				return nil
			}
			field = v[i]
		default:
			return nil
		}
	}
	return field
}

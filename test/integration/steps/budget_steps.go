package steps

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"gorm.io/gorm"

	"github.com/wedding-planner/backend/internal/integration/cache"
)

const eventTimeout = 2 * time.Second

// registerBudgetSteps registers budget setup and assertion steps.
func registerBudgetSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^a budget "([^"]*)" exists with a total of (\d+)$`, aBudgetExistsWithATotalOf)
	ctx.Step(`^a budget "([^"]*)" exists with a total of (\d+) and alerts to "([^"]*)"$`, aBudgetExistsWithAlerts)
	ctx.Step(`^the budget has the line items:$`, theBudgetHasTheLineItems)
	ctx.Step(`^the breakdown should be:$`, theBreakdownShouldBe)
	ctx.Step(`^the breakdown should sum to 100 within ([0-9.]+)$`, theBreakdownShouldSumTo100Within)
	ctx.Step(`^no category should be below 0$`, noCategoryShouldBeBelowZero)
	ctx.Step(`^I subscribe to the budget events$`, iSubscribeToTheBudgetEvents)
	ctx.Step(`^I subscribe to the budget events with the token in the query$`, iSubscribeWithQueryToken)
	ctx.Step(`^I should receive a summary event with "([^"]*)" equal to "([^"]*)"$`, iShouldReceiveASummaryEvent)
}

// registerAlertSteps registers over-budget email steps.
func registerAlertSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the email worker runs$`, theEmailWorkerRuns)
	ctx.Step(`^the Resend API rejects emails with status (\d+) "([^"]*)"$`, theResendAPIRejectsEmails)
	ctx.Step(`^the Resend API should have received (\d+) emails?$`, theResendAPIShouldHaveReceived)
	ctx.Step(`^email (\d+) should be sent to "([^"]*)" with subject "([^"]*)"$`, emailShouldBeSentTo)
}

// registerStorageSteps registers database and cache assertions.
func registerStorageSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the db should contain (\d+) objects in the "([^"]*)" table$`, theDbShouldContainObjectsInTheTable)
	ctx.Step(`^the db should contain (\d+) objects in the "([^"]*)" table with the values:$`, theDbShouldContainObjectsWithTheValues)
	ctx.Step(`^the cached summary should have "([^"]*)" equal to "([^"]*)"$`, theCachedSummaryShouldHave)
	ctx.Step(`^there should be no cached summary$`, thereShouldBeNoCachedSummary)
}

func aBudgetExistsWithATotalOf(ctx context.Context, name string, total int) (context.Context, error) {
	return createBudget(ctx, fmt.Sprintf(`{"name": %q, "total_budget": %d}`, name, total))
}

func aBudgetExistsWithAlerts(ctx context.Context, name string, total int, alertEmail string) (context.Context, error) {
	return createBudget(ctx, fmt.Sprintf(`{"name": %q, "total_budget": %d, "alert_email": %q}`, name, total, alertEmail))
}

func createBudget(ctx context.Context, body string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	if err := tc.executeRequest(http.MethodPost, "/api/v1/budgets", []byte(body)); err != nil {
		return ctx, err
	}
	if tc.response.StatusCode != http.StatusCreated {
		return ctx, fmt.Errorf("failed to create budget: %d %s", tc.response.StatusCode, string(tc.responseBody))
	}
	return ctx, nil
}

func theBudgetHasTheLineItems(ctx context.Context, table *godog.Table) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}

	rows, err := tableRows(table)
	if err != nil {
		return ctx, err
	}

	for _, row := range rows {
		amount, err := strconv.ParseFloat(row["amount"], 64)
		if err != nil {
			return ctx, fmt.Errorf("invalid amount %q: %w", row["amount"], err)
		}
		body := fmt.Sprintf(`{"name": %q, "amount": %v, "category": %q}`, row["name"], amount, row["category"])

		path := fmt.Sprintf("/api/v1/budgets/%s/line-items", tc.budgetID)
		if err := tc.executeRequest(http.MethodPost, path, []byte(body)); err != nil {
			return ctx, err
		}
		if tc.response.StatusCode != http.StatusCreated {
			return ctx, fmt.Errorf("failed to add line item %q: %d %s", row["name"], tc.response.StatusCode, string(tc.responseBody))
		}
	}
	return ctx, nil
}

// responseBreakdown finds the breakdown in either a budget or a summary body.
func (tc *TestContext) responseBreakdown() (map[string]any, error) {
	data, err := tc.responseJSON()
	if err != nil {
		return nil, err
	}
	if breakdown, ok := getFieldValue(data, "summary.breakdown").(map[string]any); ok {
		return breakdown, nil
	}
	if breakdown, ok := getFieldValue(data, "breakdown").(map[string]any); ok {
		return breakdown, nil
	}
	return nil, fmt.Errorf("no breakdown in response: %s", string(tc.responseBody))
}

func theBreakdownShouldBe(ctx context.Context, table *godog.Table) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	breakdown, err := tc.responseBreakdown()
	if err != nil {
		return err
	}

	rows, err := tableRows(table)
	if err != nil {
		return err
	}
	for _, row := range rows {
		value, ok := breakdown[row["category"]]
		if !ok {
			return fmt.Errorf("category %q missing from breakdown %v", row["category"], breakdown)
		}
		if err := compareValue(row["category"], value, row["percentage"]); err != nil {
			return err
		}
	}
	return nil
}

func theBreakdownShouldSumTo100Within(ctx context.Context, tolerance float64) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	breakdown, err := tc.responseBreakdown()
	if err != nil {
		return err
	}

	total := 0.0
	for _, value := range breakdown {
		total += value.(float64)
	}
	if math.Abs(total-100) > tolerance+1e-9 {
		return fmt.Errorf("expected breakdown to sum to 100 within %v, got %v", tolerance, total)
	}
	return nil
}

func noCategoryShouldBeBelowZero(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	breakdown, err := tc.responseBreakdown()
	if err != nil {
		return err
	}
	for key, value := range breakdown {
		if value.(float64) < 0 {
			return fmt.Errorf("category %s is negative: %v", key, value)
		}
	}
	return nil
}

func iSubscribeToTheBudgetEvents(ctx context.Context) (context.Context, error) {
	return subscribe(ctx, false)
}

// iSubscribeWithQueryToken connects the way a browser EventSource does,
// without an Authorization header.
func iSubscribeWithQueryToken(ctx context.Context) (context.Context, error) {
	return subscribe(ctx, true)
}

func subscribe(ctx context.Context, tokenInQuery bool) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	tc.cancelStream = cancel

	url := fmt.Sprintf("%s/api/v1/budgets/%s/events", tc.server.URL, tc.budgetID)
	if tokenInQuery {
		url += "?access_token=" + tc.accessToken
	}
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, url, nil)
	if err != nil {
		return ctx, err
	}
	req.Header.Set("Accept", "text/event-stream")
	if !tokenInQuery {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ctx, fmt.Errorf("failed to open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return ctx, fmt.Errorf("expected event stream status 200, got %d", resp.StatusCode)
	}

	tc.events = make(chan map[string]any, 16)
	go func() {
		defer resp.Body.Close()
		defer close(tc.events)

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			var event map[string]any
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &event); err != nil {
				continue
			}
			tc.events <- event
		}
	}()

	return ctx, nil
}

func iShouldReceiveASummaryEvent(ctx context.Context, field, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if tc.events == nil {
		return fmt.Errorf("not subscribed to budget events")
	}

	select {
	case event, open := <-tc.events:
		if !open {
			return fmt.Errorf("event stream closed")
		}
		value := getFieldValue(event, field)
		if value == nil {
			return fmt.Errorf("field '%s' not found in event %v", field, event)
		}
		return compareValue(field, value, expected)
	case <-time.After(eventTimeout):
		return fmt.Errorf("no summary event within %v", eventTimeout)
	}
}

func theEmailWorkerRuns(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if tc.injector.EmailWorker == nil {
		return fmt.Errorf("email worker is not configured")
	}
	tc.injector.EmailWorker.ProcessNow(context.Background())
	return nil
}

func theResendAPIRejectsEmails(status int, message string) error {
	resendAPI.FailWith(status, message)
	return nil
}

func theResendAPIShouldHaveReceived(count int) error {
	if got := len(resendAPI.Received()); got != count {
		return fmt.Errorf("expected %d emails, got %d", count, got)
	}
	return nil
}

func emailShouldBeSentTo(index int, recipient, subject string) error {
	received := resendAPI.Received()
	if index < 1 || index > len(received) {
		return fmt.Errorf("email %d not received, got %d emails", index, len(received))
	}

	email := received[index-1]
	to, _ := email["to"].([]any)
	if len(to) != 1 || to[0] != recipient {
		return fmt.Errorf("expected email to %q, got %v", recipient, email["to"])
	}
	if email["subject"] != subject {
		return fmt.Errorf("expected subject %q, got %v", subject, email["subject"])
	}
	return nil
}

func theDbShouldContainObjectsInTheTable(ctx context.Context, quantity int, table string) error {
	return countRows(ctx, quantity, table, nil)
}

func theDbShouldContainObjectsWithTheValues(ctx context.Context, quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(content.Content), &criteria); err != nil {
		return err
	}
	return countRows(ctx, quantity, table, criteria)
}

// countRows counts live rows of table matching criteria.
func countRows(ctx context.Context, quantity int, table string, criteria map[string]any) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	entity, ok := tc.db.GetModel(table)
	if !ok {
		return fmt.Errorf("table '%s' not found in models", table)
	}

	entityType := reflect.TypeOf(entity).Elem()
	rows := reflect.New(reflect.SliceOf(entityType))

	query := tc.db.DbConn.Model(entity)
	for key, value := range criteria {
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	if err := query.Find(rows.Interface()).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if count := rows.Elem().Len(); count != quantity {
		return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
	}
	return nil
}

func theCachedSummaryShouldHave(ctx context.Context, field, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	raw, err := tc.redis.Client.Get(context.Background(), cache.SummaryKey(tc.budgetID)).Bytes()
	if err != nil {
		return fmt.Errorf("failed to read cached summary: %w", err)
	}

	var summary map[string]any
	if err := json.Unmarshal(raw, &summary); err != nil {
		return fmt.Errorf("cached summary is not JSON: %w", err)
	}

	value := getFieldValue(summary, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in cached summary %s", field, string(raw))
	}
	return compareValue(field, value, expected)
}

func thereShouldBeNoCachedSummary(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	exists, err := tc.redis.Client.Exists(context.Background(), cache.SummaryKey(tc.budgetID)).Result()
	if err != nil {
		return err
	}
	if exists != 0 {
		return fmt.Errorf("expected no cached summary for budget %s", tc.budgetID)
	}
	return nil
}

// tableRows turns a table with a header row into maps keyed by header.
func tableRows(table *godog.Table) ([]map[string]string, error) {
	if len(table.Rows) < 1 {
		return nil, fmt.Errorf("table has no header row")
	}

	header := make([]string, len(table.Rows[0].Cells))
	for i, cell := range table.Rows[0].Cells {
		header[i] = cell.Value
	}

	rows := make([]map[string]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		values := make(map[string]string, len(header))
		for i, cell := range row.Cells {
			values[header[i]] = cell.Value
		}
		rows = append(rows, values)
	}
	return rows, nil
}

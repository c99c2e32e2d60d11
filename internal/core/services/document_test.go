package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven/mocks"
)

var (
	renderToday = date(2024, time.June, 15)
	juneRange   = domain.NewDateInterval(date(2024, time.June, 1), date(2024, time.June, 15))
)

func pin(id string, ts time.Time, content string) *domain.PinnedMessage {
	return &domain.PinnedMessage{
		ID:        id,
		Timestamp: ts,
		Content:   content,
		Permalink: "https://discord.com/channels/100/x/" + id,
	}
}

func renderContext(platform *mocks.MockPlatform) *RenderContext {
	return &RenderContext{Source: platform, Today: renderToday}
}

func TestChannelSection_Render(t *testing.T) {
	platform := mocks.NewMockPlatform()
	general := platform.AddContainer(channel("11", "general", ""))
	platform.AddPins("11",
		pin("1", date(2024, time.June, 3).Add(5*time.Hour), "Ship it"),
		pin("2", date(2024, time.May, 30), "Too early"),
		pin("3", date(2024, time.June, 15), "End is exclusive"),
		pin("4", date(2024, time.June, 1), "First day counts"),
	)

	doc, err := (&ChannelSection{Channel: general, Interval: juneRange}).Render(context.Background(), renderContext(platform))

	require.NoError(t, err)
	assert.Equal(t, "## general\n"+
		"* Ship it ([source](https://discord.com/channels/100/x/1))\n"+
		"* First day counts ([source](https://discord.com/channels/100/x/4))\n", doc)
}

func TestChannelSection_EmptyTopLevelRendersPlaceholder(t *testing.T) {
	platform := mocks.NewMockPlatform()
	quiet := platform.AddContainer(channel("11", "quiet", ""))

	doc, err := (&ChannelSection{Channel: quiet, Interval: juneRange}).Render(context.Background(), renderContext(platform))

	require.NoError(t, err)
	assert.Equal(t, "## quiet\n"+
		"Nothing interesting, but check the channel for [more discussions](https://discord.com/channels/100/11)\n", doc)
}

func TestChannelSection_EmptySubsectionRendersNothing(t *testing.T) {
	platform := mocks.NewMockPlatform()
	quiet := platform.AddContainer(channel("11", "quiet", ""))
	platform.AddPins("11", pin("1", date(2023, time.June, 3), "last year"))

	doc, err := RenderSubsection(context.Background(), &ChannelSection{Channel: quiet, Interval: juneRange, Subsection: true}, renderContext(platform))

	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestChannelSection_CustomPlaceholder(t *testing.T) {
	platform := mocks.NewMockPlatform()
	quiet := platform.AddContainer(channel("11", "quiet", ""))
	rc := renderContext(platform)
	rc.EmptyTemplate = "See {link}"

	doc, err := (&ChannelSection{Channel: quiet, Interval: juneRange}).Render(context.Background(), rc)

	require.NoError(t, err)
	assert.Equal(t, "## quiet\nSee https://discord.com/channels/100/11\n", doc)
}

func TestChannelSection_FetchFailure(t *testing.T) {
	platform := mocks.NewMockPlatform()
	locked := platform.AddContainer(channel("11", "locked", ""))
	cause := errors.New("missing access")
	platform.PinErrs["11"] = cause

	doc, err := (&ChannelSection{Channel: locked, Interval: juneRange}).Render(context.Background(), renderContext(platform))

	assert.ErrorIs(t, err, cause)
	assert.Empty(t, doc)
}

func TestCategorySection_Render(t *testing.T) {
	platform := mocks.NewMockPlatform()
	eng := platform.AddContainer(category("10", "Engineering"))
	platform.AddContainer(channel("11", "backend", "10"))
	platform.AddContainer(channel("12", "frontend", "10"))
	platform.AddContainer(channel("13", "random", ""))
	platform.AddContainer(&domain.Container{ID: "14", GuildID: testGuild, Name: "standup", Kind: domain.ContainerKindOther, ParentID: "10"})
	platform.AddPins("11", pin("1", date(2024, time.June, 2), "API v2 is live"))
	platform.AddPins("13", pin("2", date(2024, time.June, 2), "not in category"))

	doc, err := (&CategorySection{Category: eng, Interval: juneRange}).Render(context.Background(), renderContext(platform))

	require.NoError(t, err)
	assert.Equal(t, "## Engineering\n"+
		"### backend\n"+
		"* API v2 is live ([source](https://discord.com/channels/100/x/1))\n", doc)
	assert.NotContains(t, platform.Calls, "pins:13")
	assert.NotContains(t, platform.Calls, "pins:14")
	assert.Equal(t, []string{"list:100", "pins:11", "pins:12"}, platform.Calls, "channel discovery happens before child fetches")
}

func TestCategorySection_AllEmptyRendersPlaceholder(t *testing.T) {
	platform := mocks.NewMockPlatform()
	eng := platform.AddContainer(category("10", "Engineering"))
	platform.AddContainer(channel("11", "backend", "10"))

	doc, err := (&CategorySection{Category: eng, Interval: juneRange}).Render(context.Background(), renderContext(platform))

	require.NoError(t, err)
	assert.Equal(t, "## Engineering\n"+
		"Nothing interesting, but check the channel for [more discussions](https://discord.com/channels/100/10)\n", doc)
}

func TestCategorySection_ListFailure(t *testing.T) {
	platform := mocks.NewMockPlatform()
	eng := platform.AddContainer(category("10", "Engineering"))
	platform.ListErr = errors.New("gateway timeout")

	_, err := (&CategorySection{Category: eng, Interval: juneRange}).Render(context.Background(), renderContext(platform))

	assert.ErrorIs(t, err, platform.ListErr)
}

func TestCategorySection_ChildFailure(t *testing.T) {
	platform := mocks.NewMockPlatform()
	eng := platform.AddContainer(category("10", "Engineering"))
	platform.AddContainer(channel("11", "backend", "10"))
	platform.AddContainer(channel("12", "frontend", "10"))
	platform.PinErrs["11"] = errors.New("missing access")

	doc, err := (&CategorySection{Category: eng, Interval: juneRange}).Render(context.Background(), renderContext(platform))

	assert.Error(t, err)
	assert.Empty(t, doc)
	assert.NotContains(t, platform.Calls, "pins:12", "rendering stops at the first failure")
}

func TestRoot_Render(t *testing.T) {
	platform := mocks.NewMockPlatform()
	eng := platform.AddContainer(category("10", "Eng"))
	platform.AddContainer(channel("11", "backend", "10"))
	general := platform.AddContainer(channel("12", "general", ""))
	platform.AddPins("11", pin("1", date(2024, time.June, 2), "deploy notes"))

	root := NewRoot(juneRange)
	require.True(t, root.Add(general))
	require.True(t, root.Add(eng))
	assert.False(t, root.Add(&domain.Container{ID: "13", Kind: domain.ContainerKindOther}))

	doc, err := root.Render(context.Background(), renderContext(platform))

	require.NoError(t, err)
	assert.Equal(t, "Important Messages: Jun 1st - Jun 15th\n"+
		"======================================\n"+
		"## general\n"+
		"Nothing interesting, but check the channel for [more discussions](https://discord.com/channels/100/12)\n"+
		"\n"+
		"## Eng\n"+
		"### backend\n"+
		"* deploy notes ([source](https://discord.com/channels/100/x/1))\n", doc)
}

func TestRoot_RenderNoSections(t *testing.T) {
	root := NewRoot(domain.DateInterval{Start: domain.BeginningOfTime, End: date(2024, time.June, 1)})

	doc, err := root.Render(context.Background(), renderContext(mocks.NewMockPlatform()))

	require.NoError(t, err)
	assert.Equal(t, "Important Messages: Up until Jun 1st\n====================================", doc)
}

func TestRoot_AnyFailureFailsWholeRender(t *testing.T) {
	platform := mocks.NewMockPlatform()
	general := platform.AddContainer(channel("12", "general", ""))
	eng := platform.AddContainer(category("10", "Eng"))
	platform.AddPins("12", pin("1", date(2024, time.June, 2), "hello"))
	platform.ListErr = errors.New("boom")

	root := NewRoot(juneRange)
	root.Add(general)
	root.Add(eng)

	doc, err := root.Render(context.Background(), renderContext(platform))

	assert.Error(t, err)
	assert.Empty(t, doc, "no partial output")
	assert.Contains(t, platform.Calls, "pins:12", "the sibling rendered before the failure")
}

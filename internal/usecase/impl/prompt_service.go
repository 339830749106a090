// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	deliverycontext "encore/internal/delivery/context"
	"encore/internal/domain/entity"
	domainerrors "encore/internal/domain/errors"
	"encore/internal/domain/repository"
	"encore/internal/domain/service"
	"encore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// The two commission shapes carry distinct system messages: a vocal
// commission asks for a two-part Music Style + Lyrics output, an
// instrumental one for a single style phrase that must carry the
// Instrumental keyword.
const (
	lyricsSystemPrompt = "あなたは、作詞、作曲、編曲に関する深い知識を持つ、Suno AI向けの【音楽プロデューサー兼プロンプトエンジニア】です。"

	instrumentalSystemPrompt = "あなたは、音楽のジャンル、曲の構成、楽器編成、感情表現に関する深い知識を持つ、Suno AI向けの【インストゥルメンタル楽曲専門】のプロンプトエンジニアです。"
)

// lyricsRequestTemplate expects genres, theme, instruments, lyric idea
// and notes, in that order.
const lyricsRequestTemplate = `ユーザーから提供される音楽のキーワードと「歌詞の元となるアイデア」を組み合わせ、Suno AIが最も高品質な楽曲を生成できるような、プロンプト一式（Music StyleとLyrics）を生成してください。

# 依頼内容
以下の構成要素に基づき、Suno AI用のプロンプト一式を2つの項目で出力してください。

# 構成要素
*   ジャンル (Genre): %[1]s
*   テーマ/コンセプト (Theme): %[2]s
*   使用楽器 (Instruments): %[3]s
*   BPM/テンポ (Tempo): 曲の速さ。(例: slow, 120 BPM, up-tempo)
*   ボーカルスタイル (Vocal Style): 声の性別や特徴。(例: 透明感のある女性ボーカル, パワフルな男性ボーカル)
*   歌詞案 (Lyric Idea): %[4]s
*   その他要望 (Additional Notes): %[5]s

# 出力ルール
*   最終的な出力は、[Music Style] と [Lyrics] の2つのセクションのみで構成してください。
*   プロンプト以外の余計な解説や前置きは一切含めないでください。

### [Music Style] の生成ルール
*   全ての構成要素を統合し、英語で書かれた一つの文章（カンマ区切り）として出力してください。
*   最も重要となるジャンルや雰囲気を先頭に配置してください。
*   soaring guitar solo, dreamy synth pads のような具体的な音楽的表現を加えてください。
*   Vocal Style の要素を文章に含めてください。(例: with emotional female vocal)

### [Lyrics] の生成ルール
*   歌詞案 (Lyric Idea) を元にして、歌詞を完成させてください。
*   歌詞案で使われている言語（日本語、英語など）と完全に同じ言語で歌詞を作成してください。
*   [Intro] [Verse 1] [Pre-Chorus] [Chorus] [Verse 2] [Pre-Chorus] [Chorus] [Bridge] [Outro] の構成で、各パート4行程度の歌詞を生成してください。
`

// instrumentalRequestTemplate expects genres, theme, instruments and
// notes, in that order.
const instrumentalRequestTemplate = `ユーザーから提供される複数のキーワードを組み合わせ、Suno AIが最も独創的で高品質なインストゥルメンタル音楽を生成できるような、効果的で魅力的な「Style of music」プロンプトを生成してください。

# 依頼内容
以下の構成要素から、ボーカルを含まない【インストゥルメンタル音楽】のスタイルを示す英語のフレーズを生成してください。

# 構成要素
*   ジャンル (Genre): %[1]s
*   テーマ/コンセプト (Theme): %[2]s
*   リード楽器 (Lead Instrument): 主旋律を奏でる楽器。(例: Piano, Violin, Lead Guitar, Synthesizer, Flute)
*   使用楽器 (Instruments): %[3]s
*   BPM/テンポ (Tempo): 曲の速さ。(例: slow, mid-tempo, 90 BPM, fast-paced)
*   その他要望 (Additional Notes): %[4]s

# 出力ルール
*   構成要素を自然に統合し、カンマ区切りで繋がった一つの英語フレーズとして出力してください。
*   プロンプトの冒頭または重要な箇所に Instrumental という単語を必ず含めてください。
*   最も重要となるジャンルや雰囲気を先頭に配置してください。
*   ボーカルに関するキーワードは一切含めないでください。
*   提供された情報から連想される音楽的表現（例: soaring violin melody, dreamy synth pads）を補って、より豊かで具体的なプロンプトにしてください。
*   プロンプト以外の余計な解説や前置きは一切含めないでください。
`

// promptService implements the PromptUsecase interface.
type promptService struct {
	orderRepo repository.OrderRepository
	llm       service.LLMClient
	logger    *slog.Logger
}

// NewPromptService is the constructor for promptService.
func NewPromptService(
	orderRepo repository.OrderRepository,
	llm service.LLMClient,
	logger *slog.Logger,
) usecase.PromptUsecase {
	return &promptService{
		orderRepo: orderRepo,
		llm:       llm,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *promptService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GeneratePrompt renders the order into a request and asks the language
// model for a production-ready music generation prompt.
func (srv *promptService) GeneratePrompt(ctx context.Context, ownerID, orderID uuid.UUID) (*usecase.GeneratePromptOutput, error) {
	order, err := srv.orderRepo.FindByID(ctx, ownerID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order not found")
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	request := RenderPromptRequest(order)

	srv.log(ctx).Info("Generating music prompt", slog.String("orderID", orderID.String()))

	prompt, err := srv.llm.CompleteWithSystem(ctx, SystemPromptFor(order), request)
	if err != nil {
		srv.log(ctx).Error("Prompt generation failed", slog.String("orderID", orderID.String()), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPromptGenerationFailed, "failed to generate prompt")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.Wrap(domainerrors.ErrPromptGenerationFailed, "model returned an empty prompt")
	}

	return &usecase.GeneratePromptOutput{Prompt: prompt}, nil
}

// SystemPromptFor selects the system message matching the commission
// shape.
func SystemPromptFor(order *entity.Order) string {
	if order.HasLyrics {
		return lyricsSystemPrompt
	}

	return instrumentalSystemPrompt
}

// RenderPromptRequest fills the request template matching the
// commission shape with the order's finalized parameters. Rendering is
// pure so it can be verified without a live model.
func RenderPromptRequest(order *entity.Order) string {
	genres := strings.Join(order.Genres, ", ")
	instruments := strings.Join(order.Instruments, ", ")

	if order.HasLyrics {
		var lyricIdea string
		if order.LyricsContent != nil {
			lyricIdea = strings.TrimSpace(*order.LyricsContent)
		}

		return fmt.Sprintf(lyricsRequestTemplate, genres, order.Theme, instruments, lyricIdea, order.Notes)
	}

	return fmt.Sprintf(instrumentalRequestTemplate, genres, order.Theme, instruments, order.Notes)
}

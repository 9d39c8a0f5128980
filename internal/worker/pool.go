package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"dceo-backend/internal/gateway"
	"dceo-backend/internal/models"
	"dceo-backend/internal/repository"
	"dceo-backend/internal/services"
	"dceo-backend/internal/structure"
)

// Pool consumes the Redis job queues: knowledge responses get forwarded to
// the gateway for ingestion, confirmed structures get parsed and exported.
type Pool struct {
	redis         *redis.Client
	gateway       gateway.Client
	knowledgeRepo *repository.KnowledgeRepo
	sessionRepo   *repository.SessionRepo
	structureRepo *repository.StructureRepo
	events        *services.EventPublisher
	workerCount   int
	stopChan      chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	gw gateway.Client,
	knowledgeRepo *repository.KnowledgeRepo,
	sessionRepo *repository.SessionRepo,
	structureRepo *repository.StructureRepo,
	events *services.EventPublisher,
	workerCount int,
) *Pool {
	return &Pool{
		redis:         redisClient,
		gateway:       gw,
		knowledgeRepo: knowledgeRepo,
		sessionRepo:   sessionRepo,
		structureRepo: structureRepo,
		events:        events,
		workerCount:   workerCount,
		stopChan:      make(chan struct{}),
	}
}

func (p *Pool) Start() {
	queues := []string{
		"queue:" + models.JobKnowledgeIngestion,
		"queue:" + models.JobStructureExport,
	}

	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.QueueJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)

		var processErr error
		switch job.Type {
		case models.JobKnowledgeIngestion:
			processErr = p.processKnowledgeIngestion(ctx, &job)
		case models.JobStructureExport:
			processErr = p.processStructureExport(ctx, &job)
		default:
			processErr = fmt.Errorf("unknown job type: %s", job.Type)
		}

		if processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			log.Printf("Job %s completed successfully", job.ID)
		}

		// Release lock
		p.redis.Del(ctx, lockKey)
	}
}

// processKnowledgeIngestion forwards a collected response to the gateway so
// it lands in the knowledge base alongside interview transcripts.
func (p *Pool) processKnowledgeIngestion(ctx context.Context, job *models.QueueJob) error {
	response, err := p.knowledgeRepo.GetResponse(ctx, job.ReferenceID)
	if err != nil {
		return fmt.Errorf("failed to get knowledge response: %w", err)
	}

	question, err := p.knowledgeRepo.GetQuestion(ctx, response.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to get knowledge question: %w", err)
	}

	message := fmt.Sprintf("STORE_KNOWLEDGE\nCategory: %s\nQuestion: %s\nResponse: %s",
		question.Category, question.Question, response.Response)

	_, err = p.gateway.Ask(ctx, gateway.Request{
		Message:    message,
		EngineerID: job.EngineerID.String(),
	})
	if err != nil {
		return fmt.Errorf("gateway ingestion failed: %w", err)
	}

	if err := p.knowledgeRepo.UpdateResponseStatus(ctx, response.ID, models.KnowledgeIngested); err != nil {
		return fmt.Errorf("failed to mark response ingested: %w", err)
	}

	p.events.Publish(ctx, job.EngineerID, models.WSMessage{
		Type:    "knowledge_ingested",
		Payload: models.KnowledgeIngestedEvent{ResponseID: response.ID, Status: models.KnowledgeIngested},
	})
	return nil
}

// processStructureExport snapshots the confirmed structure as a parsed tree.
func (p *Pool) processStructureExport(ctx context.Context, job *models.QueueJob) error {
	session, err := p.sessionRepo.GetByID(ctx, job.ReferenceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Session was reset between confirm and export; nothing to do.
			log.Printf("Session %s gone before export, skipping", job.ReferenceID)
			return nil
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	version, err := p.structureRepo.Latest(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to get structure version: %w", err)
	}

	tree := structure.Parse(version.StructureText)
	treeJSON, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	if err := p.structureRepo.SaveExport(ctx, session.ID, session.ConversationID, len(tree), treeJSON); err != nil {
		return fmt.Errorf("failed to save export: %w", err)
	}

	p.events.Publish(ctx, job.EngineerID, models.WSMessage{
		Type: "structure_exported",
		Payload: map[string]interface{}{
			"session_id": session.ID.String(),
			"node_count": len(tree),
		},
	})
	return nil
}

func (p *Pool) handleFailure(ctx context.Context, job *models.QueueJob, err error) {
	job.RetryCount++
	errMsg := err.Error()

	if job.RetryCount < 3 {
		// Re-queue with backoff
		log.Printf("Job %s failed (attempt %d): %s, retrying", job.ID, job.RetryCount, errMsg)
		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		time.AfterFunc(backoff, func() {
			p.redis.LPush(context.Background(), "queue:"+job.Type, string(jobBytes))
		})
		return
	}

	log.Printf("Job %s failed permanently: %s", job.ID, errMsg)
	if job.Type == models.JobKnowledgeIngestion {
		p.knowledgeRepo.UpdateResponseStatus(ctx, job.ReferenceID, models.KnowledgeFailed)
	}

	p.events.Publish(ctx, job.EngineerID, models.WSMessage{
		Type: "error",
		Payload: map[string]interface{}{
			"job_id":        job.ID.String(),
			"error_code":    "JOB_FAILED",
			"error_message": errMsg,
		},
	})
}

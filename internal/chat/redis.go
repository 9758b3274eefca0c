// internal/chat/redis.go
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/anreszii/matchup/internal/matchmaking"
)

const opTimeout = 5 * time.Second

// Service is a Redis-backed chat controller. Each room keeps its member
// set in a Redis set and fans messages out over a pub/sub channel; the
// real-time delivery side is consumed by the transport layer.
type Service struct {
	rdb *redis.Client
	log *logrus.Logger

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewService wraps the given Redis client.
func NewService(rdb *redis.Client, log *logrus.Logger) *Service {
	return &Service{
		rdb:   rdb,
		log:   log,
		rooms: make(map[string]*Room),
	}
}

// Spawn creates a room for the given owner type and id. One room exists
// per lobby/command/team instance.
func (s *Service) Spawn(roomType, id string) (matchmaking.ChatRoom, error) {
	key := fmt.Sprintf("chat:%s:%s", roomType, id)
	room := &Room{
		id:      key,
		members: key + ":members",
		channel: key + ":messages",
		svc:     s,
	}
	s.mu.Lock()
	s.rooms[key] = room
	s.mu.Unlock()
	return room, nil
}

// Get resolves a previously spawned room.
func (s *Service) Get(id string) (matchmaking.ChatRoom, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	return room, ok
}

// Room is one chat channel.
type Room struct {
	id      string
	members string
	channel string
	svc     *Service
}

// ID returns the room identifier handed to clients.
func (r *Room) ID() string { return r.id }

// Join registers a member.
func (r *Room) Join(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.svc.rdb.SAdd(ctx, r.members, name).Err()
}

// Leave unregisters a member.
func (r *Room) Leave(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.svc.rdb.SRem(ctx, r.members, name).Err()
}

// Message publishes a chat line to the room channel.
func (r *Room) Message(from, content string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"from": from,
		"msg":  content,
		"ts":   time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.svc.rdb.Publish(ctx, r.channel, payload).Err()
}

// Delete destroys the room and its member set.
func (r *Room) Delete() error {
	r.svc.mu.Lock()
	delete(r.svc.rooms, r.id)
	r.svc.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.svc.rdb.Del(ctx, r.members).Err()
}

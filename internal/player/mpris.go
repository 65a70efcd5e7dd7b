package player

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"karolbroda.com/lrcplay/internal/logger"
	"karolbroda.com/lrcplay/internal/track"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisRootIface   = "org.mpris.MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	mprisNamePrefix  = "org.mpris.MediaPlayer2."

	// position jumps beyond this many seconds between polls count as seeks
	seekThreshold = 3.0
)

type State struct {
	Track              *track.Info
	Position           float64
	Playing            bool
	Status             string
	lastPositionUpdate time.Time
	lastPosition       float64
}

// DetectSeek reports whether newPosition is too far from where playback
// should be given the time since the last update.
func (s *State) DetectSeek(newPosition float64, now time.Time) bool {
	if s.lastPositionUpdate.IsZero() {
		return false
	}

	expected := s.lastPosition
	if s.Playing {
		expected += now.Sub(s.lastPositionUpdate).Seconds()
	}

	return math.Abs(newPosition-expected) > seekThreshold
}

func (s *State) UpdatePosition(pos float64, now time.Time) {
	s.Position = pos
	s.lastPosition = pos
	s.lastPositionUpdate = now
}

// Service follows one MPRIS player over D-Bus.
type Service struct {
	bus        *dbus.Conn
	service    string
	signalChan chan *dbus.Signal
	stopChan   chan struct{}
	stopOnce   sync.Once
	eventChan  chan EventData
	state      *State
	mu         sync.RWMutex
	now        func() time.Time
}

func NewService(bus *dbus.Conn, mprisService string) (*Service, error) {
	if bus == nil {
		return nil, errors.New("nil dbus connection")
	}
	if mprisService == "" {
		return nil, errors.New("empty mpris service name")
	}
	if !strings.HasPrefix(mprisService, mprisNamePrefix) {
		mprisService = mprisNamePrefix + mprisService
	}

	return newService(bus, mprisService), nil
}

func newService(bus *dbus.Conn, mprisService string) *Service {
	return &Service{
		bus:       bus,
		service:   mprisService,
		eventChan: make(chan EventData, 16),
		state:     &State{},
		now:       time.Now,
	}
}

func (s *Service) Name() string {
	return s.service
}

// Start subscribes to property changes and Seeked signals.
func (s *Service) Start() error {
	signalChan := make(chan *dbus.Signal, 10)
	s.signalChan = signalChan
	s.stopChan = make(chan struct{})

	s.bus.Signal(signalChan)

	matchPropertiesChanged := fmt.Sprintf(
		"type='signal',sender='%s',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path='%s'",
		s.service, mprisPath,
	)
	matchSeeked := fmt.Sprintf(
		"type='signal',sender='%s',interface='%s',member='Seeked',path='%s'",
		s.service, mprisPlayerIface, mprisPath,
	)

	for _, match := range []string{matchPropertiesChanged, matchSeeked} {
		if err := s.bus.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, match).Err; err != nil {
			return fmt.Errorf("failed to add signal match: %w", err)
		}
	}

	go s.signalLoop()

	return nil
}

func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		if s.stopChan != nil {
			close(s.stopChan)
		}
		if s.signalChan != nil {
			s.bus.RemoveSignal(s.signalChan)
		}
	})
}

func (s *Service) Events() <-chan EventData {
	return s.eventChan
}

func (s *Service) object() dbus.BusObject {
	return s.bus.Object(s.service, mprisPath)
}

func (s *Service) CurrentTrack() (*track.Info, error) {
	prop, err := s.object().GetProperty(mprisPlayerIface + ".Metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata property: %w", err)
	}

	metadata, ok := prop.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata type %T", prop.Value())
	}

	info := trackFromMetadata(metadata)
	if info.Title == "" {
		return nil, ErrNoTrack
	}

	return info, nil
}

func (s *Service) Position() (float64, error) {
	prop, err := s.object().GetProperty(mprisPlayerIface + ".Position")
	if err != nil {
		return 0, fmt.Errorf("failed to get position property: %w", err)
	}

	micros, ok := prop.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected position type %T", prop.Value())
	}

	return microsToSeconds(micros), nil
}

func (s *Service) playbackStatus() (string, error) {
	prop, err := s.object().GetProperty(mprisPlayerIface + ".PlaybackStatus")
	if err != nil {
		return "", fmt.Errorf("failed to get playback status: %w", err)
	}

	status, ok := prop.Value().(string)
	if !ok {
		return "", fmt.Errorf("unexpected playback status type %T", prop.Value())
	}
	return status, nil
}

func (s *Service) Playing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Playing
}

// SetPosition seeks to an absolute position. Players need the current
// track id for that; without one it falls back to a relative Seek.
func (s *Service) SetPosition(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return errors.New("position is not finite")
	}
	if seconds < 0 {
		seconds = 0
	}
	target := secondsToMicros(seconds)

	s.mu.RLock()
	var trackID string
	if s.state.Track != nil {
		trackID = s.state.Track.TrackID
	}
	s.mu.RUnlock()

	if path := dbus.ObjectPath(trackID); trackID != "" && path.IsValid() {
		call := s.object().Call(mprisPlayerIface+".SetPosition", 0, path, target)
		if call.Err != nil {
			return fmt.Errorf("failed to set position: %w", call.Err)
		}
	} else {
		current, err := s.Position()
		if err != nil {
			return err
		}
		call := s.object().Call(mprisPlayerIface+".Seek", 0, target-secondsToMicros(current))
		if call.Err != nil {
			return fmt.Errorf("failed to seek: %w", call.Err)
		}
	}

	s.mu.Lock()
	s.state.UpdatePosition(seconds, s.now())
	s.mu.Unlock()

	return nil
}

func (s *Service) Toggle() error {
	if err := s.object().Call(mprisPlayerIface+".PlayPause", 0).Err; err != nil {
		return fmt.Errorf("failed to toggle playback: %w", err)
	}
	return nil
}

// Open asks the player to load and play uri.
func (s *Service) Open(uri string) error {
	if uri == "" {
		return errors.New("empty uri")
	}
	if err := s.object().Call(mprisPlayerIface+".OpenUri", 0, uri).Err; err != nil {
		return fmt.Errorf("failed to open uri: %w", err)
	}
	return nil
}

// Poll refreshes track, position and status, emitting events for changes
// that arrived without a signal.
func (s *Service) Poll() error {
	trk, err := s.CurrentTrack()
	if err != nil {
		return err
	}

	pos, err := s.Position()
	if err != nil {
		return err
	}

	status, statusErr := s.playbackStatus()
	now := s.now()

	s.mu.Lock()
	seekDetected := s.state.DetectSeek(pos, now)
	s.state.UpdatePosition(pos, now)

	var events []EventData
	if !trk.IsSameTrack(s.state.Track) {
		s.state.Track = trk
		events = append(events, EventData{Type: EventTrackChanged, Track: trk, Position: pos})
	} else if seekDetected {
		events = append(events, EventData{Type: EventSeeked, Position: pos})
	}
	if statusErr == nil {
		events = append(events, s.applyStatusLocked(status)...)
	}
	s.mu.Unlock()

	for _, event := range events {
		s.emitEvent(event)
	}

	return nil
}

// applyStatusLocked records a PlaybackStatus value. MPRIS has no end signal,
// so a transition into Stopped is reported as EventEnded.
func (s *Service) applyStatusLocked(status string) []EventData {
	if status == s.state.Status {
		return nil
	}

	previous := s.state.Status
	s.state.Status = status
	s.state.Playing = status == "Playing"
	s.state.lastPositionUpdate = s.now()

	events := []EventData{{Type: EventPlaybackStateChanged, Playing: s.state.Playing}}
	if status == "Stopped" && previous != "" {
		events = append(events, EventData{Type: EventEnded, Position: s.state.Position})
	}
	return events
}

func (s *Service) signalLoop() {
	for {
		select {
		case sig, ok := <-s.signalChan:
			if !ok {
				return
			}
			s.handleSignal(sig)
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleSignal(sig *dbus.Signal) {
	if sig == nil {
		return
	}

	switch sig.Name {
	case "org.freedesktop.DBus.Properties.PropertiesChanged":
		s.handlePropertiesChanged(sig)
	case mprisPlayerIface + ".Seeked":
		s.handleSeeked(sig)
	}
}

func (s *Service) handlePropertiesChanged(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}

	interfaceName, ok := sig.Body[0].(string)
	if !ok || interfaceName != mprisPlayerIface {
		return
	}

	changedProps, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	var events []EventData

	if metadataVariant, exists := changedProps["Metadata"]; exists {
		if metadata, ok := metadataVariant.Value().(map[string]dbus.Variant); ok {
			info := trackFromMetadata(metadata)

			s.mu.Lock()
			if info.Title != "" && !info.IsSameTrack(s.state.Track) {
				s.state.Track = info
				s.state.UpdatePosition(0, s.now())
				events = append(events, EventData{Type: EventTrackChanged, Track: info})
			}
			s.mu.Unlock()
		}
	}

	if playbackVariant, exists := changedProps["PlaybackStatus"]; exists {
		if status, ok := playbackVariant.Value().(string); ok {
			s.mu.Lock()
			events = append(events, s.applyStatusLocked(status)...)
			s.mu.Unlock()
		}
	}

	for _, event := range events {
		s.emitEvent(event)
	}
}

func (s *Service) handleSeeked(sig *dbus.Signal) {
	if len(sig.Body) < 1 {
		return
	}

	micros, ok := sig.Body[0].(int64)
	if !ok {
		return
	}
	pos := microsToSeconds(micros)

	s.mu.Lock()
	s.state.UpdatePosition(pos, s.now())
	s.mu.Unlock()

	s.emitEvent(EventData{Type: EventSeeked, Position: pos})
}

func (s *Service) emitEvent(event EventData) {
	logger.Debug("player event", "type", event.Type, "position", event.Position)
	emit(s.eventChan, event)
}

// GetState returns a copy of the last observed state.
func (s *Service) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stateCopy := State{
		Position: s.state.Position,
		Playing:  s.state.Playing,
		Status:   s.state.Status,
	}
	if s.state.Track != nil {
		trackCopy := *s.state.Track
		stateCopy.Track = &trackCopy
	}

	return stateCopy
}

// ListPlayers returns the MPRIS service names on the bus.
func ListPlayers(bus *dbus.Conn) ([]string, error) {
	var names []string
	if err := bus.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("failed to list dbus names: %w", err)
	}

	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisNamePrefix) {
			players = append(players, name)
		}
	}
	return players, nil
}

// Identity returns the player's human readable name, or "" if unknown.
func Identity(bus *dbus.Conn, service string) string {
	variant, err := bus.Object(service, mprisPath).GetProperty(mprisRootIface + ".Identity")
	if err != nil {
		return ""
	}
	identity, _ := variant.Value().(string)
	return identity
}

func microsToSeconds(micros int64) float64 {
	if micros <= 0 {
		return 0
	}
	return float64(micros) / 1e6
}

func secondsToMicros(seconds float64) int64 {
	return int64(math.Round(seconds * 1e6))
}

func trackFromMetadata(metadata map[string]dbus.Variant) *track.Info {
	return &track.Info{
		Title:        extractString(metadata, "xesam:title"),
		Artist:       extractArtist(metadata, "xesam:artist"),
		Album:        extractString(metadata, "xesam:album"),
		ArtworkURL:   extractString(metadata, "mpris:artUrl"),
		TrackID:      extractTrackID(metadata, "mpris:trackid"),
		AudioPath:    extractString(metadata, "xesam:url"),
		DurationSecs: extractDuration(metadata, "mpris:length"),
	}
}

func variantValue(metadata map[string]dbus.Variant, key string) any {
	if metadata == nil {
		return nil
	}
	variant, exists := metadata[key]
	if !exists {
		return nil
	}
	return variant.Value()
}

func extractString(metadata map[string]dbus.Variant, key string) string {
	text, _ := variantValue(metadata, key).(string)
	return text
}

// mpris:trackid is an object path, though some players send a plain string.
func extractTrackID(metadata map[string]dbus.Variant, key string) string {
	switch typed := variantValue(metadata, key).(type) {
	case dbus.ObjectPath:
		return string(typed)
	case string:
		return typed
	default:
		return ""
	}
}

func extractArtist(metadata map[string]dbus.Variant, key string) string {
	switch typed := variantValue(metadata, key).(type) {
	case []string:
		if len(typed) > 0 {
			return typed[0]
		}
		return ""
	case string:
		return typed
	default:
		return ""
	}
}

func extractDuration(metadata map[string]dbus.Variant, key string) float64 {
	switch typed := variantValue(metadata, key).(type) {
	case int64:
		return microsToSeconds(typed)
	case uint64:
		return float64(typed) / 1e6
	case int32:
		return microsToSeconds(int64(typed))
	default:
		return 0
	}
}
